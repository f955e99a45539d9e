package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-tracker/internal/services"
)

type createListRequest struct {
	Title       string       `json:"title" binding:"required,notblank,max=255"`
	Description *string      `json:"description"`
	TaskID      *flexibleInt `json:"task_id" binding:"required"`
}

type updateListRequest struct {
	Title       string       `json:"title" binding:"required,notblank,max=255"`
	Description *string      `json:"description"`
	Completed   flexibleBool `json:"completed"`
}

// nullIfEmpty trims the description and stores a blank one as null.
func nullIfEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func (h *handlerImpl) HandleListLists(c *gin.Context) {
	params := services.ListListsParams{Page: queryPage(c)}
	if raw := c.Query("task_id"); raw != "" {
		taskID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			abort(c, newValidationError(map[string][]string{
				"task_id": {"The task id field must be an integer."},
			}))
			return
		}
		params.TaskID = &taskID
	}

	page, err := h.lists.ListLists(c, principalFromContext(c), params)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope{
		Status: statusSuccess,
		Data:   newListResponses(page.Items),
		Meta:   newPaginationMeta(page),
	})
}

func (h *handlerImpl) HandleCreateList(c *gin.Context) {
	var req createListRequest
	if fields := bindJSON(c, &req); fields != nil {
		abort(c, newValidationError(fields))
		return
	}

	list, err := h.lists.CreateList(c, principalFromContext(c), services.CreateListParams{
		Title:       strings.TrimSpace(req.Title),
		Description: nullIfEmpty(req.Description),
		TaskID:      int64(*req.TaskID),
	})
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, envelope{
		Status:  statusSuccess,
		Message: "List created successfully",
		Data:    newListResponse(list),
	})
}

func (h *handlerImpl) HandleGetList(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abort(c, newNotFoundError(messageListNotFound))
		return
	}

	list, err := h.lists.GetList(c, principalFromContext(c), id)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope{
		Status: statusSuccess,
		Data:   newListResponse(list),
	})
}

// HandleUpdateList checks existence and ownership before binding: 404, then
// 403, then 422.
func (h *handlerImpl) HandleUpdateList(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abort(c, newNotFoundError(messageListNotFound))
		return
	}

	principal := principalFromContext(c)
	if _, err := h.lists.GetList(c, principal, id); err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	var req updateListRequest
	if fields := bindJSON(c, &req); fields != nil {
		abort(c, newValidationError(fields))
		return
	}

	list, err := h.lists.UpdateList(c, principal, services.UpdateListParams{
		ID:          id,
		Title:       strings.TrimSpace(req.Title),
		Description: nullIfEmpty(req.Description),
		Completed:   bool(req.Completed),
	})
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope{
		Status:  statusSuccess,
		Message: "List updated successfully",
		Data:    newListResponse(list),
	})
}

func (h *handlerImpl) HandleDeleteList(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		abort(c, newNotFoundError(messageListNotFound))
		return
	}

	err := h.lists.DeleteList(c, principalFromContext(c), id)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, envelope{
		Status:  statusSuccess,
		Message: "List deleted successfully",
	})
}
