package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/adanyl0v/go-taskboard/internal/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserPasswordMismatch = errors.New("user password mismatch")

	ErrTaskNotFound       = errors.New("task not found")
	ErrTaskForbidden      = errors.New("task belongs to another user")
	ErrDuplicateTaskTitle = errors.New("task with this title exists")
	ErrDueDateInPast      = errors.New("due date cannot be in the past")
	ErrTaskTitleRequired  = errors.New("task title is required")

	ErrTokenInvalid       = errors.New("token expired or invalid")
	ErrTokenMissingUserID = errors.New("invalid token")
)

// Querier is the subset of *pgxpool.Pool the services depend on.
type Querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type AuthService interface {
	// Register creates a user with the given full name, email and password.
	//
	// The email is normalized to lower case and the password is hashed
	// before it is stored. A fresh token is issued for the new user.
	//
	// It returns ErrUserAlreadyExists if the email is already taken.
	Register(ctx context.Context, params RegisterParams) (*AuthResult, error)

	// Login authenticates the user by email and password and issues a token.
	//
	// It returns ErrUserNotFound if the user with the given email doesn't
	// exist or ErrUserPasswordMismatch if the password doesn't match.
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)

	// GetUserByID returns ErrUserNotFound if there is no such user.
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

type TokenService interface {
	// Issue signs a token for the user that expires after the configured TTL.
	Issue(userID string) (token string, expiresAt time.Time, err error)

	// Parse verifies the token and returns the user ID it was issued for.
	//
	// It returns ErrTokenInvalid if the signature, issuer or expiry check
	// fails and ErrTokenMissingUserID if the token carries no user ID.
	Parse(token string) (userID string, err error)
}

type TaskService interface {
	// ListTasks returns every task owned by the user in creation order.
	ListTasks(ctx context.Context, ownerID string) ([]*models.Task, error)

	// CreateTask returns ErrDuplicateTaskTitle if the owner already has a
	// task with the same title and ErrDueDateInPast if the due date is
	// before now.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// UpdateTask applies the patch to the task. It returns ErrTaskNotFound,
	// ErrTaskForbidden if the caller doesn't own the task, ErrDueDateInPast
	// if the patch moves the due date into the past or ErrDuplicateTaskTitle.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// DeleteTask permanently removes the task. It returns ErrTaskNotFound or
	// ErrTaskForbidden.
	DeleteTask(ctx context.Context, params DeleteTaskParams) error
}

type RegisterParams struct {
	FullName string
	Email    string
	Password string
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User           *models.User
	Token          string
	TokenExpiresAt time.Time
}

type CreateTaskParams struct {
	OwnerID     string
	Title       string
	Description string
	Priority    models.Priority
	Status      models.Status
	DueAt       time.Time
	Tags        []string
}

type UpdateTaskParams struct {
	ID      string
	OwnerID string
	Patch   models.TaskPatch
}

type DeleteTaskParams struct {
	ID      string
	OwnerID string
}
