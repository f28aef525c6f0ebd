package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"todo/internal/models"
)

// Response details for conditions the handlers check themselves.
const (
	detailCategoryNotFound   = "Category not found"
	detailCategoryExists     = "Category already exists"
	detailCategoryNameExists = "Category name already exists"
	detailCategoryHasTasks   = "Category has associated tasks. Please delete or reassign tasks first."
	detailTaskNotFound       = "Task not found"
	detailParentNotFound     = "Parent task not found"
	detailOwnParent          = "Task cannot be its own parent"
)

var registerValidationOnce sync.Once

// registerValidation makes validator report JSON/query field names.
func registerValidation() {
	registerValidationOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return field.Name
		})
	})
}

// statusFor maps a repository error to the HTTP status it surfaces as.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict),
		errors.Is(err, models.ErrInvalidReference),
		errors.Is(err, models.ErrSelfReference),
		errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail responds with the status derived from err.
func (s *Server) fail(c *gin.Context, err error) {
	s.respondError(c, statusFor(err), err)
}

// respondError logs the error and returns a JSON payload. Internal errors
// are not echoed to the client.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	detail := http.StatusText(status)
	if err != nil {
		detail = err.Error()
	}
	s.respondDetail(c, status, detail)
}

// respondDetail aborts the request with {"detail": detail}.
func (s *Server) respondDetail(c *gin.Context, status int, detail string) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.String("request_id", c.GetString(requestIDKey)),
			slog.String("error", detail),
		)
		if status == http.StatusInternalServerError {
			detail = "internal server error"
		}
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

// respondBindError renders request decoding and validation failures.
func (s *Server) respondBindError(c *gin.Context, err error) {
	s.respondDetail(c, http.StatusBadRequest, bindingDetail(err))
}

func bindingDetail(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return strings.Join(msgs, "; ")
	}
	if errors.Is(err, models.ErrValidation) {
		return err.Error()
	}
	return fmt.Sprintf("invalid request: %v", err)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
