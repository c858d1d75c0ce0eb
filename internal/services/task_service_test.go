package services

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-taskboard/internal/models"
)

const (
	ownerID = "0192f0a4-5c3e-7d2b-9f1a-000000000001"
	otherID = "0192f0a4-5c3e-7d2b-9f1a-000000000002"
	taskID  = "0192f0a4-5c3e-7d2b-9f1a-0000000000aa"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestTaskService(db Querier) *taskServiceImpl {
	s := NewTaskService(zerolog.Nop(), db).(*taskServiceImpl)
	s.now = func() time.Time { return fixedNow }
	return s
}

var taskColumns = []string{
	"owner_id", "title", "description", "priority", "status",
	"due_at", "tags", "created_at", "updated_at",
}

func expectSelectForUpdate(mock pgxmock.PgxPoolIface, owner string) {
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(taskID).
		WillReturnRows(pgxmock.NewRows(taskColumns).AddRow(
			owner, "Write report", "", "Medium", "todo",
			fixedNow.Add(24*time.Hour), []string{"work"}, fixedNow, fixedNow,
		))
}

func TestTaskService_ListTasks(t *testing.T) {
	mock := newMockPool(t)
	s := newTestTaskService(mock)

	mock.ExpectQuery("SELECT id").
		WithArgs(ownerID).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "title", "description", "priority", "status",
			"due_at", "tags", "created_at", "updated_at",
		}).
			AddRow("a", "First", "", "High", "todo", fixedNow, []string{"x"}, fixedNow, fixedNow).
			AddRow("b", "Second", "desc", "Low", "done", fixedNow, []string(nil), fixedNow, fixedNow))

	tasks, err := s.ListTasks(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "First", tasks[0].Title)
	assert.Equal(t, models.PriorityHigh, tasks[0].Priority)
	assert.Equal(t, ownerID, tasks[0].OwnerID)
	assert.Equal(t, models.StatusDone, tasks[1].Status)
	assert.NotNil(t, tasks[1].Tags)
}

func TestTaskService_ListTasksEmpty(t *testing.T) {
	mock := newMockPool(t)
	s := newTestTaskService(mock)

	mock.ExpectQuery("SELECT id").
		WithArgs(ownerID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	tasks, err := s.ListTasks(context.Background(), ownerID)
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestTaskService_CreateTask(t *testing.T) {
	mock := newMockPool(t)
	s := newTestTaskService(mock)

	mock.ExpectExec("INSERT INTO tasks").
		WithArgs(pgxmock.AnyArg(), ownerID, "Write report", "", "Medium", "todo",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	task, err := s.CreateTask(context.Background(), CreateTaskParams{
		OwnerID: ownerID,
		Title:   "  Write report ",
		DueAt:   fixedNow,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, []string{}, task.Tags)
	assert.Equal(t, fixedNow, task.CreatedAt)
}

func TestTaskService_CreateTaskDueDateInPast(t *testing.T) {
	mock := newMockPool(t)
	s := newTestTaskService(mock)

	_, err := s.CreateTask(context.Background(), CreateTaskParams{
		OwnerID: ownerID,
		Title:   "Late",
		DueAt:   fixedNow.Add(-time.Nanosecond),
	})
	assert.ErrorIs(t, err, ErrDueDateInPast)
}

func TestTaskService_CreateTaskBlankTitle(t *testing.T) {
	mock := newMockPool(t)
	s := newTestTaskService(mock)

	_, err := s.CreateTask(context.Background(), CreateTaskParams{
		OwnerID: ownerID,
		Title:   "   ",
		DueAt:   fixedNow.Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrTaskTitleRequired)
}

func TestTaskService_CreateTaskDuplicateTitle(t *testing.T) {
	mock := newMockPool(t)
	s := newTestTaskService(mock)

	mock.ExpectExec("INSERT INTO tasks").
		WithArgs(pgxmock.AnyArg(), ownerID, "Write report", "", "High", "todo",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{
			Code:           pgerrcode.UniqueViolation,
			ConstraintName: ownerTitleConstraint,
		})

	_, err := s.CreateTask(context.Background(), CreateTaskParams{
		OwnerID:  ownerID,
		Title:    "Write report",
		Priority: models.PriorityHigh,
		DueAt:    fixedNow.Add(time.Hour),
	})
	assert.ErrorIs(t, err, ErrDuplicateTaskTitle)
}

func TestTaskService_UpdateTask(t *testing.T) {
	mock := newMockPool(t)
	s := newTestTaskService(mock)

	mock.ExpectBegin()
	expectSelectForUpdate(mock, ownerID)
	mock.ExpectExec("UPDATE tasks").
		WithArgs("Write report", "", "High", "done",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), taskID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	priority := models.PriorityHigh
	status := models.StatusDone
	task, err := s.UpdateTask(context.Background(), UpdateTaskParams{
		ID:      taskID,
		OwnerID: ownerID,
		Patch: models.TaskPatch{
			Priority: &priority,
			Status:   &status,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.PriorityHigh, task.Priority)
	assert.Equal(t, models.StatusDone, task.Status)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, []string{"work"}, task.Tags)
}

func TestTaskService_UpdateTaskErrors(t *testing.T) {
	past := fixedNow.Add(-time.Hour)
	title := "Taken"

	tests := []struct {
		name    string
		id      string
		setup   func(mock pgxmock.PgxPoolIface)
		patch   models.TaskPatch
		wantErr error
	}{
		{
			name: "not found",
			id:   taskID,
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("FOR UPDATE").WithArgs(taskID).WillReturnError(pgx.ErrNoRows)
			},
			wantErr: ErrTaskNotFound,
		},
		{
			name:    "malformed id",
			id:      "42",
			setup:   func(pgxmock.PgxPoolIface) {},
			wantErr: ErrTaskNotFound,
		},
		{
			name: "another owner",
			id:   taskID,
			setup: func(mock pgxmock.PgxPoolIface) {
				expectSelectForUpdate(mock, otherID)
			},
			patch:   models.TaskPatch{DueAt: &past},
			wantErr: ErrTaskForbidden,
		},
		{
			name: "due date in past",
			id:   taskID,
			setup: func(mock pgxmock.PgxPoolIface) {
				expectSelectForUpdate(mock, ownerID)
			},
			patch:   models.TaskPatch{DueAt: &past},
			wantErr: ErrDueDateInPast,
		},
		{
			name: "duplicate title",
			id:   taskID,
			setup: func(mock pgxmock.PgxPoolIface) {
				expectSelectForUpdate(mock, ownerID)
				mock.ExpectExec("UPDATE tasks").
					WithArgs(title, "", "Medium", "todo",
						pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), taskID).
					WillReturnError(&pgconn.PgError{
						Code:           pgerrcode.UniqueViolation,
						ConstraintName: ownerTitleConstraint,
					})
			},
			patch:   models.TaskPatch{Title: &title},
			wantErr: ErrDuplicateTaskTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockPool(t)
			s := newTestTaskService(mock)

			mock.ExpectBegin()
			tt.setup(mock)
			mock.ExpectRollback()

			_, err := s.UpdateTask(context.Background(), UpdateTaskParams{
				ID:      tt.id,
				OwnerID: ownerID,
				Patch:   tt.patch,
			})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTaskService_DeleteTask(t *testing.T) {
	mock := newMockPool(t)
	s := newTestTaskService(mock)

	mock.ExpectBegin()
	expectSelectForUpdate(mock, ownerID)
	mock.ExpectExec("DELETE FROM tasks").
		WithArgs(taskID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := s.DeleteTask(context.Background(), DeleteTaskParams{ID: taskID, OwnerID: ownerID})
	require.NoError(t, err)
}

func TestTaskService_DeleteTaskAnotherOwner(t *testing.T) {
	mock := newMockPool(t)
	s := newTestTaskService(mock)

	mock.ExpectBegin()
	expectSelectForUpdate(mock, otherID)
	mock.ExpectRollback()

	err := s.DeleteTask(context.Background(), DeleteTaskParams{ID: taskID, OwnerID: ownerID})
	assert.ErrorIs(t, err, ErrTaskForbidden)
}

func TestTaskService_DeleteTaskNotFound(t *testing.T) {
	mock := newMockPool(t)
	s := newTestTaskService(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(taskID).WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	err := s.DeleteTask(context.Background(), DeleteTaskParams{ID: taskID, OwnerID: ownerID})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
