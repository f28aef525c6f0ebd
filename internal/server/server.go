package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"todo/internal/storage/sqlite"
)

// Options tunes routing and paging.
type Options struct {
	StaticDir       string
	APIPrefix       string
	DefaultPageSize int
	MaxPageSize     int
	// Debug switches gin to debug mode; release mode otherwise.
	Debug bool
}

// Server provides HTTP handlers for the task and category API.
type Server struct {
	engine     *gin.Engine
	store      *sqlite.Store
	categories CategoryStore
	tasks      TaskStore
	logger     *slog.Logger
	opts       Options
}

// New constructs the HTTP server with routes and middleware configured.
func New(store *sqlite.Store, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = sqlite.DefaultListLimit
	}
	if opts.MaxPageSize < opts.DefaultPageSize {
		opts.MaxPageSize = opts.DefaultPageSize
	}

	registerValidation()

	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	srv := &Server{
		engine:     router,
		store:      store,
		categories: sqlite.NewCategoryRepository(store),
		tasks:      sqlite.NewTaskRepository(store),
		logger:     logger,
		opts:       opts,
	}

	// Recovery runs inside the logger so panics are logged with their request id.
	router.Use(requestID(), srv.requestLogger(), gin.Recovery())
	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group(s.opts.APIPrefix)
	{
		api.GET("/healthz", s.handleHealth)

		categories := api.Group("/categories")
		{
			categories.GET("", s.handleListCategories)
			categories.POST("", s.handleCreateCategory)
			categories.GET(":id", s.handleGetCategory)
			categories.GET(":id/tasks", s.handleGetCategoryTasks)
			categories.PUT(":id", s.handleUpdateCategory)
			categories.DELETE(":id", s.handleDeleteCategory)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("", s.handleListTasks)
			tasks.POST("", s.handleCreateTask)
			tasks.POST("/reorder", s.handleReorderTasks)
			tasks.GET(":id", s.handleGetTask)
			tasks.GET(":id/subtasks", s.handleGetSubtasks)
			tasks.PUT(":id", s.handleUpdateTask)
			tasks.PATCH(":id/status", s.handleUpdateTaskStatus)
			tasks.DELETE(":id", s.handleDeleteTask)
		}
	}

	s.mountStatic()
}

// handleRoot reports that the API is up when no frontend is mounted.
func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Todo App API is running"})
}

// handleHealth provides a readiness endpoint backed by a database ping.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.respondError(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts a path parameter to int64 with error handling.
func parseID(c *gin.Context, name string) (int64, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid identifier"})
		return 0, false
	}
	return id, true
}

// pageLimit applies the configured default and ceiling to a requested limit.
func (s *Server) pageLimit(requested int) int {
	if requested <= 0 {
		return s.opts.DefaultPageSize
	}
	if requested > s.opts.MaxPageSize {
		return s.opts.MaxPageSize
	}
	return requested
}

// respondSuccess writes payload as JSON.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
