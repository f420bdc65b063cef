// Package handler adapts the application services to gin.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/restaurant/backend/internal/domain/shared"
	"github.com/restaurant/backend/internal/infrastructure/logger"
	"github.com/restaurant/backend/internal/interfaces/http/dto"
	"github.com/restaurant/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// BaseHandler holds the response helpers shared by every handler
type BaseHandler struct {
	logger *zap.Logger
}

func newBaseHandler(log *zap.Logger) BaseHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return BaseHandler{logger: log}
}

// Success writes a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created writes a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error writes an error response with an explicit code
func (h *BaseHandler) Error(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.HTTPStatus(code), dto.NewErrorResponse(code, message, c.GetString(logger.GinRequestIDKey)))
}

// HandleError maps a service error onto a response. Domain errors keep their
// code; anything else is logged and answered with a generic 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	requestID := c.GetString(logger.GinRequestIDKey)

	if de, ok := shared.AsDomainError(err); ok {
		c.AbortWithStatusJSON(dto.HTTPStatus(de.Code), dto.NewErrorResponse(de.Code, de.Message, requestID))
		return
	}

	logger.FromContext(c.Request.Context()).Error("Unhandled request error",
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	h.Error(c, dto.ErrCodeInternal, "An internal error occurred")
}

// bindJSON binds the body into req and answers the failure itself. Any
// decoding failure other than a validator or size error is a malformed body.
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var (
		verrs    validator.ValidationErrors
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verrs):
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Request validation failed", c.GetString(logger.GinRequestIDKey), middleware.ValidationDetails(verrs)))
	case errors.As(err, &tooLarge):
		h.Error(c, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
	default:
		h.Error(c, dto.ErrCodeBadRequest, "Malformed request body: "+err.Error())
	}
	return false
}

// uuidParam parses a path parameter and answers a 400 when it is malformed
func (h *BaseHandler) uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Invalid path parameter", c.GetString(logger.GinRequestIDKey),
			[]dto.ValidationDetail{{Field: name, Message: "Invalid UUID format"}},
		))
		return uuid.Nil, false
	}
	return id, true
}

// scope returns the authenticated tenant and acting user
func (h *BaseHandler) scope(c *gin.Context) (tenantID, actorID uuid.UUID, ok bool) {
	tenantID, err := uuid.Parse(c.GetString(logger.GinTenantIDKey))
	if err != nil {
		h.Error(c, dto.ErrCodeUnauthorized, "Tenant context missing")
		return uuid.Nil, uuid.Nil, false
	}
	actorID, err = uuid.Parse(c.GetString(logger.GinUserIDKey))
	if err != nil {
		h.Error(c, dto.ErrCodeUnauthorized, "User context missing")
		return uuid.Nil, uuid.Nil, false
	}
	return tenantID, actorID, true
}
