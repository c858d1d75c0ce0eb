// Package client talks to the taskboard HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskboard/internal/models"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

type Client struct {
	logger     zerolog.Logger
	baseURL    string
	httpClient *http.Client
}

func New(logger zerolog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type RegisterInput struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateTaskInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Priority    models.Priority `json:"priority,omitempty"`
	Status      models.Status   `json:"status,omitempty"`
	DueAt       time.Time       `json:"dueAt"`
	Tags        []string        `json:"tags,omitempty"`
}

// UpdateTaskInput sends only the non-nil fields.
type UpdateTaskInput struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Priority    *models.Priority `json:"priority,omitempty"`
	Status      *models.Status   `json:"status,omitempty"`
	DueAt       *time.Time       `json:"dueAt,omitempty"`
	Tags        *[]string        `json:"tags,omitempty"`
}

func (c *Client) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/register", "", input, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	input := map[string]string{
		"email":    email,
		"password": password,
	}

	var result AuthResult
	err := c.do(ctx, http.MethodPost, "/auth/login", "", input, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var result struct {
		User *models.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &result)
	if err != nil {
		return nil, err
	}
	return result.User, nil
}

func (c *Client) ListTasks(ctx context.Context, token string) ([]models.Task, error) {
	var result struct {
		Tasks []models.Task `json:"tasks"`
	}
	err := c.do(ctx, http.MethodGet, "/tasks", token, nil, &result)
	if err != nil {
		return nil, err
	}
	return result.Tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, token string, input CreateTaskInput) (*models.Task, error) {
	var result struct {
		Task *models.Task `json:"task"`
	}
	err := c.do(ctx, http.MethodPost, "/tasks/create", token, input, &result)
	if err != nil {
		return nil, err
	}
	return result.Task, nil
}

func (c *Client) UpdateTask(ctx context.Context, token, id string, input UpdateTaskInput) (*models.Task, error) {
	var result struct {
		Task *models.Task `json:"task"`
	}
	err := c.do(ctx, http.MethodPut, "/tasks/update/"+url.PathEscape(id), token, input, &result)
	if err != nil {
		return nil, err
	}
	return result.Task, nil
}

func (c *Client) DeleteTask(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/delete/"+url.PathEscape(id), token, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("method", method).
			Str("path", path).
			Msg("request failed")
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Msg("received response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Errors  []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Error
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
		for _, fe := range body.Errors {
			apiErr.Message += fmt.Sprintf("; %s %s", fe.Field, fe.Message)
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
