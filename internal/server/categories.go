package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"todo/internal/models"
)

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type pageQuery struct {
	Skip  int `form:"skip" binding:"min=0"`
	Limit int `form:"limit" binding:"min=0"`
}

// handleListCategories returns categories in insertion order.
func (s *Server) handleListCategories(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.respondBindError(c, err)
		return
	}

	categories, err := s.categories.List(c.Request.Context(), q.Skip, s.pageLimit(q.Limit))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, categories)
}

// handleCreateCategory creates a category with a unique name.
func (s *Server) handleCreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}

	category, err := s.categories.Create(c.Request.Context(), req.Name)
	if errors.Is(err, models.ErrConflict) {
		s.respondDetail(c, http.StatusBadRequest, detailCategoryExists)
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, category)
}

// handleGetCategory fetches one category.
func (s *Server) handleGetCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	category, err := s.categories.Get(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		s.respondDetail(c, http.StatusNotFound, detailCategoryNotFound)
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, category)
}

// handleGetCategoryTasks fetches a category together with its tasks.
func (s *Server) handleGetCategoryTasks(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	category, err := s.categories.WithTasks(c.Request.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		s.respondDetail(c, http.StatusNotFound, detailCategoryNotFound)
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, category)
}

// handleUpdateCategory renames an existing category.
func (s *Server) handleUpdateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req models.CategoryUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBindError(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.respondBindError(c, err)
		return
	}

	ctx := c.Request.Context()
	current, err := s.categories.Get(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		s.respondDetail(c, http.StatusNotFound, detailCategoryNotFound)
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}

	if req.Name.Set && req.Name.Value != current.Name {
		existing, err := s.categories.GetByName(ctx, req.Name.Value)
		if err == nil && existing.ID != id {
			s.respondDetail(c, http.StatusBadRequest, detailCategoryNameExists)
			return
		}
		if err != nil && !errors.Is(err, models.ErrNotFound) {
			s.fail(c, err)
			return
		}
	}

	category, err := s.categories.Update(ctx, id, req)
	if errors.Is(err, models.ErrConflict) {
		s.respondDetail(c, http.StatusBadRequest, detailCategoryNameExists)
		return
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, category)
}

// handleDeleteCategory removes a category that no longer owns tasks.
func (s *Server) handleDeleteCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	err := s.categories.Delete(c.Request.Context(), id)
	switch {
	case errors.Is(err, models.ErrNotFound):
		s.respondDetail(c, http.StatusNotFound, detailCategoryNotFound)
		return
	case errors.Is(err, models.ErrConflict):
		s.respondDetail(c, http.StatusBadRequest, detailCategoryHasTasks)
		return
	case err != nil:
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
