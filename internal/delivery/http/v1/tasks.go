package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-taskboard/internal/models"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

type createTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=100"`
	Description string     `json:"description" binding:"max=500"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=Low Medium High"`
	Status      string     `json:"status" binding:"omitempty,oneof=todo in-progress review done"`
	DueAt       *time.Time `json:"dueAt" binding:"required"`
	Tags        []string   `json:"tags"`
}

// updateTaskRequest is the complete set of fields a client may change.
// Anything else in the body is ignored.
type updateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=100"`
	Description *string    `json:"description" binding:"omitempty,max=500"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=Low Medium High"`
	Status      *string    `json:"status" binding:"omitempty,oneof=todo in-progress review done"`
	DueAt       *time.Time `json:"dueAt"`
	Tags        *[]string  `json:"tags"`
}

func (r updateTaskRequest) patch() models.TaskPatch {
	patch := models.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		DueAt:       r.DueAt,
		Tags:        r.Tags,
	}
	if r.Priority != nil {
		priority := models.Priority(*r.Priority)
		patch.Priority = &priority
	}
	if r.Status != nil {
		status := models.Status(*r.Status)
		patch.Status = &status
	}
	return patch
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	userID, ok := getStringFromContext(c, userIDCtxKey)
	if !ok {
		h.logger.Error().Msg(errMissingUserIDInCtx.Error())
		abort(c, newUnauthorizedError(errNoToken.Error()))
		return
	}

	tasks, err := h.tasks.ListTasks(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to list tasks")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	h.logger.Info().
		Int("count", len(tasks)).
		Str("user_id", userID).
		Msg("fetched tasks")
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, ok := getStringFromContext(c, userIDCtxKey)
	if !ok {
		h.logger.Error().Msg(errMissingUserIDInCtx.Error())
		abort(c, newUnauthorizedError(errNoToken.Error()))
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindError(err))
		return
	}

	task, err := h.tasks.CreateTask(c, services.CreateTaskParams{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.Priority(req.Priority),
		Status:      models.Status(req.Status),
		DueAt:       *req.DueAt,
		Tags:        req.Tags,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to create task")
		h.abortTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Task created successfully",
		"task":    task,
	})
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	userID, ok := getStringFromContext(c, userIDCtxKey)
	if !ok {
		h.logger.Error().Msg(errMissingUserIDInCtx.Error())
		abort(c, newUnauthorizedError(errNoToken.Error()))
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		h.logger.Error().Msg(errMissingTaskIDInPath.Error())
		abort(c, newBadRequestError(errMissingTaskIDInPath.Error()))
		return
	}

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindError(err))
		return
	}

	task, err := h.tasks.UpdateTask(c, services.UpdateTaskParams{
		ID:      taskID,
		OwnerID: userID,
		Patch:   req.patch(),
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to update task")
		h.abortTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task updated successfully",
		"task":    task,
	})
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	userID, ok := getStringFromContext(c, userIDCtxKey)
	if !ok {
		h.logger.Error().Msg(errMissingUserIDInCtx.Error())
		abort(c, newUnauthorizedError(errNoToken.Error()))
		return
	}

	taskID := c.Param("id")
	if taskID == "" {
		h.logger.Error().Msg(errMissingTaskIDInPath.Error())
		abort(c, newBadRequestError(errMissingTaskIDInPath.Error()))
		return
	}

	err := h.tasks.DeleteTask(c, services.DeleteTaskParams{
		ID:      taskID,
		OwnerID: userID,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task")
		h.abortTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

func (h *handlerImpl) abortTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
	case errors.Is(err, services.ErrTaskForbidden):
		abort(c, newForbiddenError(errUnauthorizedTaskOp.Error()))
	case errors.Is(err, services.ErrDuplicateTaskTitle),
		errors.Is(err, services.ErrDueDateInPast),
		errors.Is(err, services.ErrTaskTitleRequired):
		abort(c, newBadRequestError(err.Error()))
	default:
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}
