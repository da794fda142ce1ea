package handler

import (
	"errors"
	"net/http"

	"github.com/emedico/backend/internal/domain/order"
	"github.com/emedico/backend/internal/interfaces/http/dto"
	"github.com/emedico/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errNoUser = errors.New("request is not authenticated")

// BaseHandler writes the response envelope for every storefront handler
type BaseHandler struct{}

func getRequestID(c *gin.Context) string { return middleware.RequestIDFrom(c) }

// getUserID returns the customer the bearer token was issued to
func getUserID(c *gin.Context) (uuid.UUID, error) {
	raw := middleware.UserIDFrom(c)
	if raw == "" {
		return uuid.Nil, errNoUser
	}
	return uuid.Parse(raw)
}

// optionalUserID is nil for guests, who may shop and check out too
func optionalUserID(c *gin.Context) *uuid.UUID {
	if id, err := getUserID(c); err == nil {
		return &id
	}
	return nil
}

// sessionID prefers the session RequireSession resolved over the raw path
func sessionID(c *gin.Context) string {
	if id := middleware.GetSessionID(c); id != "" {
		return id
	}
	return c.Param("id")
}

func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

func (h *BaseHandler) NoContent(c *gin.Context) { c.Status(http.StatusNoContent) }

func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode picks the status from the (possibly domain) code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	code = dto.NormalizeErrorCode(code)
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindError answers a failed ShouldBind with ERR_VALIDATION and per-field
// details where the validator produced them
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	middleware.HandleValidationError(c, err)
}

// bind decodes the JSON body into a T. On failure the validation error has
// already been written.
func bind[T any](c *gin.Context) (T, bool) {
	var req T
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return req, false
	}
	return req, true
}

// HandleError answers with the code and status of a domain or checkout
// error, keeping field details such as address problems. Anything else is
// recorded on the context for the access log and answered with a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	oe := order.AsOrderError(err)
	if oe == nil {
		_ = c.Error(err)
		h.InternalError(c, "An unexpected error occurred")
		return
	}

	code := dto.NormalizeErrorCode(oe.Code)
	resp := dto.NewErrorResponseWithDetails(code, oe.Message, getRequestID(c), dto.DetailsFromMap(oe.Details))
	c.JSON(dto.GetHTTPStatus(code), resp)
}
