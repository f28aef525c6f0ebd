package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"todo/internal/models"
	"todo/internal/storage/sqlite"
)

type taskCreateRequest struct {
	Title        string          `json:"title" binding:"required"`
	Description  *string         `json:"description"`
	Priority     models.Priority `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate      *time.Time      `json:"due_date"`
	Status       bool            `json:"status"`
	OrderIndex   int             `json:"order_index"`
	CategoryID   *int64          `json:"category_id"`
	ParentTaskID *int64          `json:"parent_task_id"`
}

type taskStatusRequest struct {
	Status *bool `json:"status" binding:"required"`
}

type listTasksQuery struct {
	Skip         int     `form:"skip" binding:"min=0"`
	Limit        int     `form:"limit" binding:"min=0"`
	Status       *bool   `form:"status"`
	Priority     *string `form:"priority" binding:"omitempty,oneof=low medium high"`
	CategoryID   *int64  `form:"category_id"`
	ParentTaskID *int64  `form:"parent_task_id"`
	RootOnly     bool    `form:"root_only"`
}

// handleListTasks lists tasks with optional filters. Without parent_task_id
// every level of the hierarchy is returned; root_only=true narrows the list
// to top-level tasks.
func (s *Server) handleListTasks(c *gin.Context) {
	var q listTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondBindError(c, err)
		return
	}
	if q.RootOnly && q.ParentTaskID != nil {
		s.respondDetail(c, http.StatusBadRequest, "parent_task_id and root_only cannot be combined")
		return
	}

	filter := sqlite.TaskFilter{
		Status:       q.Status,
		CategoryID:   q.CategoryID,
		ParentTaskID: q.ParentTaskID,
		RootOnly:     q.RootOnly,
		Skip:         q.Skip,
		Limit:        s.pageLimit(q.Limit),
	}
	if q.Priority != nil {
		p := models.Priority(*q.Priority)
		filter.Priority = &p
	}

	tasks, err := s.tasks.List(c.Request.Context(), filter)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks)
}

// handleCreateTask inserts a new task after checking its references.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if req.CategoryID != nil && !s.checkCategory(c, *req.CategoryID) {
		return
	}
	if req.ParentTaskID != nil && !s.checkParent(c, *req.ParentTaskID) {
		return
	}

	task, err := s.tasks.Create(ctx, models.NewTask{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		DueDate:      req.DueDate,
		Status:       req.Status,
		OrderIndex:   req.OrderIndex,
		CategoryID:   req.CategoryID,
		ParentTaskID: req.ParentTaskID,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleGetTask fetches a single task.
func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := s.tasks.Get(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		s.respondDetail(c, http.StatusNotFound, detailTaskNotFound)
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleGetSubtasks fetches a task and its direct subtasks.
func (s *Server) handleGetSubtasks(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := s.tasks.GetWithSubtasks(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		s.respondDetail(c, http.StatusNotFound, detailTaskNotFound)
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleUpdateTask applies a partial update. Only keys present in the body
// change; null clears nullable fields.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.TaskUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	exists, err := s.tasks.Exists(ctx, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if !exists {
		s.respondDetail(c, http.StatusNotFound, detailTaskNotFound)
		return
	}

	if req.CategoryID.Set && !req.CategoryID.Null && !s.checkCategory(c, req.CategoryID.Value) {
		return
	}
	if req.ParentTaskID.Set && !req.ParentTaskID.Null {
		if req.ParentTaskID.Value == id {
			s.respondDetail(c, http.StatusBadRequest, detailOwnParent)
			return
		}
		if !s.checkParent(c, req.ParentTaskID.Value) {
			return
		}
	}

	task, err := s.tasks.Update(ctx, id, req)
	if errors.Is(err, models.ErrNotFound) {
		s.respondDetail(c, http.StatusNotFound, detailTaskNotFound)
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleUpdateTaskStatus sets the completion flag only.
func (s *Server) handleUpdateTaskStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req taskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}

	task, err := s.tasks.UpdateStatus(c.Request.Context(), id, *req.Status)
	if errors.Is(err, models.ErrNotFound) {
		s.respondDetail(c, http.StatusNotFound, detailTaskNotFound)
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleDeleteTask removes a task and, through the cascade, its subtasks.
func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	err := s.tasks.Delete(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		s.respondDetail(c, http.StatusNotFound, detailTaskNotFound)
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// handleReorderTasks assigns order_index by position in the posted id list.
// Every id must exist before any index is written.
func (s *Server) handleReorderTasks(c *gin.Context) {
	var ids []int64
	if err := c.ShouldBindJSON(&ids); err != nil {
		s.respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			s.respondDetail(c, http.StatusBadRequest, fmt.Sprintf("Task %d listed more than once", id))
			return
		}
		seen[id] = struct{}{}

		exists, err := s.tasks.Exists(ctx, id)
		if err != nil {
			s.fail(c, err)
			return
		}
		if !exists {
			s.respondDetail(c, http.StatusNotFound, fmt.Sprintf("Task %d not found", id))
			return
		}
	}

	tasks, err := s.tasks.Reorder(ctx, ids)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks)
}

// checkCategory responds with 400 and returns false when the category is missing.
func (s *Server) checkCategory(c *gin.Context, id int64) bool {
	_, err := s.categories.Get(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		s.respondDetail(c, http.StatusBadRequest, detailCategoryNotFound)
		return false
	}
	if err != nil {
		s.fail(c, err)
		return false
	}
	return true
}

// checkParent responds with 400 and returns false when the parent is missing.
func (s *Server) checkParent(c *gin.Context, id int64) bool {
	exists, err := s.tasks.Exists(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return false
	}
	if !exists {
		s.respondDetail(c, http.StatusBadRequest, detailParentNotFound)
		return false
	}
	return true
}
