package tasklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskboard/internal/client"
	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/storage"
)

type TaskAPI interface {
	ListTasks(ctx context.Context, token string) ([]models.Task, error)
	CreateTask(ctx context.Context, token string, input client.CreateTaskInput) (*models.Task, error)
	UpdateTask(ctx context.Context, token, id string, input client.UpdateTaskInput) (*models.Task, error)
	DeleteTask(ctx context.Context, token, id string) error
}

type TokenSource interface {
	Token() (string, error)
}

type Store interface {
	Set(key, value string) error
}

// ErrRefreshFailed is returned alongside the result of a mutation the server
// accepted when the re-fetch that follows it fails.
var ErrRefreshFailed = errors.New("failed to refresh tasks")

// cachedTask is one entry of the mirrored cache, tagged with its position in
// the server list.
type cachedTask struct {
	models.Task
	Index int `json:"index"`
}

// Manager keeps the board in sync with the server. Every successful
// mutation is followed by a full re-fetch. The mirrored cache is never read
// back.
type Manager struct {
	logger zerolog.Logger
	api    TaskAPI
	tokens TokenSource
	store  Store
	board  *Board
}

func NewManager(logger zerolog.Logger, api TaskAPI, tokens TokenSource, store Store, board *Board) *Manager {
	return &Manager{
		logger: logger,
		api:    api,
		tokens: tokens,
		store:  store,
		board:  board,
	}
}

func (m *Manager) Board() *Board {
	return m.board
}

// Refresh replaces the whole cache with the server list.
func (m *Manager) Refresh(ctx context.Context) error {
	token, err := m.tokens.Token()
	if err != nil {
		return err
	}

	tasks, err := m.api.ListTasks(ctx, token)
	if err != nil {
		m.logger.Error().
			Err(err).
			Msg("failed to fetch tasks")
		return err
	}
	m.board.Replace(tasks)

	cached := make([]cachedTask, len(tasks))
	for i, task := range tasks {
		cached[i] = cachedTask{Task: task, Index: i}
	}
	raw, err := json.Marshal(cached)
	if err == nil {
		err = m.store.Set(storage.KeyTasksCache, string(raw))
	}
	if err != nil {
		m.logger.Warn().
			Err(err).
			Msg("failed to mirror task cache")
	}

	m.logger.Debug().
		Int("count", len(tasks)).
		Msg("refreshed tasks")
	return nil
}

func (m *Manager) Create(ctx context.Context, input client.CreateTaskInput) (*models.Task, error) {
	token, err := m.tokens.Token()
	if err != nil {
		return nil, err
	}

	task, err := m.api.CreateTask(ctx, token, input)
	if err != nil {
		return nil, err
	}
	m.logger.Info().
		Str("task_id", task.ID).
		Msg("created task")
	return task, m.refreshAfterMutation(ctx)
}

func (m *Manager) Update(ctx context.Context, id string, input client.UpdateTaskInput) (*models.Task, error) {
	token, err := m.tokens.Token()
	if err != nil {
		return nil, err
	}

	task, err := m.api.UpdateTask(ctx, token, id, input)
	if err != nil {
		return nil, err
	}
	m.logger.Info().
		Str("task_id", id).
		Msg("updated task")
	return task, m.refreshAfterMutation(ctx)
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	token, err := m.tokens.Token()
	if err != nil {
		return err
	}

	if err = m.api.DeleteTask(ctx, token, id); err != nil {
		return err
	}
	m.logger.Info().
		Str("task_id", id).
		Msg("deleted task")
	return m.refreshAfterMutation(ctx)
}

func (m *Manager) refreshAfterMutation(ctx context.Context) error {
	if err := m.Refresh(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return nil
}
