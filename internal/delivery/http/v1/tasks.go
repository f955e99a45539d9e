package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-tracker/internal/services"
)

type taskRequest struct {
	Title       string `json:"title" binding:"required,notblank,max=255"`
	Description string `json:"description" binding:"required,notblank"`
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	page, err := h.tasks.ListTasks(c, principalFromContext(c), queryPage(c))
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope{
		Status: statusSuccess,
		Data:   newTaskResponses(page.Items),
		Meta:   newPaginationMeta(page),
	})
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req taskRequest
	if fields := bindJSON(c, &req); fields != nil {
		abort(c, newValidationError(fields))
		return
	}

	task, err := h.tasks.CreateTask(c, principalFromContext(c), services.CreateTaskParams{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, envelope{
		Status:  statusSuccess,
		Message: "Task created successfully",
		Data:    newTaskResponse(task),
	})
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abort(c, newNotFoundError(messageTaskNotFound))
		return
	}

	task, err := h.tasks.GetTask(c, principalFromContext(c), id)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope{
		Status: statusSuccess,
		Data:   newTaskResponse(task),
	})
}

// HandleUpdateTask resolves the task before binding, so a missing task is a
// 404 even when the body is invalid.
func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abort(c, newNotFoundError(messageTaskNotFound))
		return
	}

	principal := principalFromContext(c)
	if _, err := h.tasks.GetTask(c, principal, id); err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	var req taskRequest
	if fields := bindJSON(c, &req); fields != nil {
		abort(c, newValidationError(fields))
		return
	}

	task, err := h.tasks.UpdateTask(c, principal, services.UpdateTaskParams{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope{
		Status:  statusSuccess,
		Message: "Task updated successfully",
		Data:    newTaskResponse(task),
	})
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abort(c, newNotFoundError(messageTaskNotFound))
		return
	}

	err := h.tasks.DeleteTask(c, principalFromContext(c), id)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope{
		Status:  statusSuccess,
		Message: "Task deleted successfully",
	})
}
