// Package session keeps the signed-in user and token for taskctl and mirrors
// them to persistent storage.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskboard/internal/client"
	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/storage"
)

var ErrNotAuthenticated = errors.New("not authenticated")

type AuthClient interface {
	Register(ctx context.Context, input client.RegisterInput) (*client.AuthResult, error)
	Login(ctx context.Context, email, password string) (*client.AuthResult, error)
	Me(ctx context.Context, token string) (*models.User, error)
}

type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
}

type State struct {
	User            *models.User
	Token           string
	IsAuthenticated bool
	// Err holds the message of the last failed login or registration.
	Err string
}

type Manager struct {
	mu     sync.RWMutex
	logger zerolog.Logger
	auth   AuthClient
	store  Store
	state  State
}

func NewManager(logger zerolog.Logger, auth AuthClient, store Store) *Manager {
	return &Manager{
		logger: logger,
		auth:   auth,
		store:  store,
	}
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Token returns the bearer token of the current session, if any.
func (m *Manager) Token() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.state.IsAuthenticated {
		return "", ErrNotAuthenticated
	}
	return m.state.Token, nil
}

// Restore re-validates the persisted token against the server. Any failure
// discards the persisted pair and leaves the session signed out.
func (m *Manager) Restore(ctx context.Context) State {
	token, hasToken, err := m.store.Get(storage.KeyToken)
	if err != nil {
		m.logger.Warn().
			Err(err).
			Msg("failed to read persisted token")
	}
	_, hasUser, err := m.store.Get(storage.KeyUser)
	if err != nil {
		m.logger.Warn().
			Err(err).
			Msg("failed to read persisted user")
	}

	if !hasToken || !hasUser || token == "" {
		m.setState(State{})
		return m.State()
	}

	user, err := m.auth.Me(ctx, token)
	if err != nil {
		m.logger.Info().
			Err(err).
			Msg("persisted session rejected")
		m.discard()
		m.setState(State{})
		return m.State()
	}

	m.setState(State{
		User:            user,
		Token:           token,
		IsAuthenticated: true,
	})
	m.logger.Debug().
		Str("user_id", user.ID).
		Msg("restored session")
	return m.State()
}

func (m *Manager) Login(ctx context.Context, email, password string) error {
	result, err := m.auth.Login(ctx, email, password)
	return m.complete(result, err)
}

func (m *Manager) Register(ctx context.Context, input client.RegisterInput) error {
	result, err := m.auth.Register(ctx, input)
	return m.complete(result, err)
}

// Logout is local only; the token stays valid on the server until it expires.
func (m *Manager) Logout() error {
	m.setState(State{})
	return m.store.Delete(storage.KeyToken, storage.KeyUser)
}

func (m *Manager) complete(result *client.AuthResult, err error) error {
	if err != nil {
		m.setState(State{Err: errorMessage(err)})
		return err
	}

	rawUser, err := json.Marshal(result.User)
	if err != nil {
		m.setState(State{Err: err.Error()})
		return err
	}
	if err := m.store.Set(storage.KeyToken, result.Token); err != nil {
		m.setState(State{Err: err.Error()})
		return err
	}
	if err := m.store.Set(storage.KeyUser, string(rawUser)); err != nil {
		m.discard()
		m.setState(State{Err: err.Error()})
		return err
	}

	m.setState(State{
		User:            result.User,
		Token:           result.Token,
		IsAuthenticated: true,
	})
	return nil
}

func (m *Manager) discard() {
	if err := m.store.Delete(storage.KeyToken, storage.KeyUser); err != nil {
		m.logger.Warn().
			Err(err).
			Msg("failed to discard persisted session")
	}
}

func (m *Manager) setState(state State) {
	m.mu.Lock()
	m.state = state
	m.mu.Unlock()
}

func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
