package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskboard/internal/models"
)

const ownerTitleConstraint = "tasks_owner_id_title_key"

type taskServiceImpl struct {
	logger zerolog.Logger
	db     Querier
	now    func() time.Time
}

func NewTaskService(
	logger zerolog.Logger,
	db Querier,
) TaskService {
	return &taskServiceImpl{
		logger: logger,
		db:     db,
		now:    time.Now,
	}
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, ownerID string) ([]*models.Task, error) {
	const selectTasksByOwnerIDQuery = `
SELECT id,
       title,
       description,
       priority,
       status,
       due_at,
       tags,
       created_at,
       updated_at
FROM tasks
WHERE owner_id = $1
ORDER BY created_at, id
`
	rows, err := s.db.Query(
		ctx,
		selectTasksByOwnerIDQuery,
		ownerID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("user_id", ownerID).
			Msg("failed to select tasks by owner id")
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		var priority, status string
		task := &models.Task{OwnerID: ownerID}
		err = rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&priority,
			&status,
			&task.DueAt,
			&task.Tags,
			&task.CreatedAt,
			&task.UpdatedAt,
		)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		task.Priority = models.Priority(priority)
		task.Status = models.Status(status)
		if task.Tags == nil {
			task.Tags = []string{}
		}
		tasks = append(tasks, task)
	}

	err = rows.Err()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to iterate over rows")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Str("user_id", ownerID).
		Msg("selected tasks by owner id")
	return tasks, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	now := s.now()
	task := &models.Task{
		OwnerID:     params.OwnerID,
		Title:       strings.TrimSpace(params.Title),
		Description: strings.TrimSpace(params.Description),
		Priority:    params.Priority,
		Status:      params.Status,
		DueAt:       params.DueAt,
		Tags:        params.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Title == "" {
		return nil, ErrTaskTitleRequired
	}
	if task.DueAt.Before(now) {
		s.logger.Error().
			Time("due_at", task.DueAt).
			Msg("due date in the past")
		return nil, ErrDueDateInPast
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	taskUUID, err := uuid.NewV7()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task uuid")
		return nil, err
	}
	task.ID = taskUUID.String()

	const insertTaskQuery = `
INSERT INTO tasks (id,
                   owner_id,
                   title,
                   description,
                   priority,
                   status,
                   due_at,
                   tags,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	_, err = s.db.Exec(
		ctx,
		insertTaskQuery,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Status),
		task.DueAt,
		task.Tags,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if isDuplicateTitle(err) {
			s.logger.Error().
				Str("user_id", task.OwnerID).
				Str("title", task.Title).
				Msg("task with this title exists")
			return nil, ErrDuplicateTaskTitle
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.OwnerID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	task, err := s.selectTaskForUpdate(ctx, tx, params.ID, params.OwnerID)
	if err != nil {
		return nil, err
	}

	patch := params.Patch
	if patch.DueAt != nil && patch.DueAt.Before(s.now()) {
		s.logger.Error().
			Str("task_id", task.ID).
			Time("due_at", *patch.DueAt).
			Msg("due date in the past")
		return nil, ErrDueDateInPast
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ErrTaskTitleRequired
		}
		patch.Title = &title
	}
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		patch.Description = &description
	}

	if patch.IsEmpty() {
		s.logger.Warn().
			Str("task_id", task.ID).
			Msg("no fields to update")
		return task, nil
	}

	patch.Apply(task)
	task.UpdatedAt = s.now()

	const updateTaskQuery = `
UPDATE tasks
SET title = $1,
    description = $2,
    priority = $3,
    status = $4,
    due_at = $5,
    tags = $6,
    updated_at = $7
WHERE id = $8
`
	_, err = tx.Exec(
		ctx,
		updateTaskQuery,
		task.Title,
		task.Description,
		string(task.Priority),
		string(task.Status),
		task.DueAt,
		task.Tags,
		task.UpdatedAt,
		task.ID,
	)
	if err != nil {
		if isDuplicateTitle(err) {
			s.logger.Error().
				Str("task_id", task.ID).
				Str("title", task.Title).
				Msg("task with this title exists")
			return nil, ErrDuplicateTaskTitle
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return nil, err
	}

	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", task.OwnerID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, params DeleteTaskParams) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to begin transaction")
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = s.selectTaskForUpdate(ctx, tx, params.ID, params.OwnerID)
	if err != nil {
		return err
	}

	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	_, err = tx.Exec(
		ctx,
		deleteTaskQuery,
		params.ID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", params.ID).
			Msg("failed to delete task")
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to commit transaction")
		return err
	}

	s.logger.Info().
		Str("task_id", params.ID).
		Str("user_id", params.OwnerID).
		Msg("deleted task")
	return nil
}

// selectTaskForUpdate locks the task row and checks that the caller owns it.
func (s *taskServiceImpl) selectTaskForUpdate(ctx context.Context, tx pgx.Tx, taskID, callerID string) (*models.Task, error) {
	if _, err := uuid.Parse(taskID); err != nil {
		s.logger.Error().
			Str("task_id", taskID).
			Msg("malformed task id")
		return nil, ErrTaskNotFound
	}

	var priority, status string
	task := &models.Task{ID: taskID}

	const selectTaskForUpdateQuery = `
SELECT owner_id,
       title,
       description,
       priority,
       status,
       due_at,
       tags,
       created_at,
       updated_at
FROM tasks
WHERE id = $1
FOR UPDATE
`
	err := tx.QueryRow(
		ctx,
		selectTaskForUpdateQuery,
		task.ID,
	).Scan(
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&priority,
		&status,
		&task.DueAt,
		&task.Tags,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Str("task_id", task.ID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to select task")
		return nil, err
	}
	task.Priority = models.Priority(priority)
	task.Status = models.Status(status)
	if task.Tags == nil {
		task.Tags = []string{}
	}

	if task.OwnerID != callerID {
		s.logger.Error().
			Str("task_id", task.ID).
			Str("user_id", callerID).
			Msg("task belongs to another user")
		return nil, ErrTaskForbidden
	}
	return task, nil
}

func isDuplicateTitle(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		pgErr.ConstraintName == ownerTitleConstraint
}
