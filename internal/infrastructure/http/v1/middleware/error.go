package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tenantpress/internal/core/apperror"
	"tenantpress/internal/infrastructure/storage/postgres"
	"tenantpress/pkg/logger"
)

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		// If response already written by handler, do not override it.
		if c.Writer.Written() {
			return
		}

		appErr := classify(err)
		if appErr == nil {
			logger.Error(c.Request.Context(), "unhandled error", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"code":    apperror.CodeInternal,
				"message": "Internal server error",
				"details": map[string]any{"request_id": c.GetString("request_id")},
			})
			return
		}

		if appErr.Err != nil {
			logger.Error(c.Request.Context(), "request error",
				"code", appErr.Code,
				"cause", appErr.Err,
			)
		}
		c.JSON(appErr.HTTPStatus, gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
			"details": appErr.Details,
		})
	}
}

// classify maps known errors to AppError; nil means unknown.
func classify(err error) *apperror.AppError {
	if appErr, ok := apperror.AsAppError(err); ok {
		return appErr
	}

	switch {
	case postgres.IsRowLevelSecurityViolation(err):
		return apperror.NewForbidden("row-level security policy violation").WithCause(err)
	case postgres.IsForeignKeyViolation(err):
		return apperror.NewBusinessRule(apperror.CodeUnknownRef, "referenced row does not exist").
			WithDetail("constraint", postgres.ConstraintName(err)).
			WithCause(err)
	case postgres.IsUniqueViolation(err):
		return apperror.NewConflict("duplicate entry").
			WithDetail("constraint", postgres.ConstraintName(err)).
			WithCause(err)
	case postgres.IsStatementTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return &apperror.AppError{
			Code:       apperror.CodeTimeout,
			Message:    "transaction timed out",
			HTTPStatus: http.StatusServiceUnavailable,
			Err:        err,
		}
	}
	return nil
}
