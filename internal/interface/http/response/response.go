package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/freelance-marketplace/internal/logger"
	"github.com/ignatzorin/freelance-marketplace/internal/pkg/apperror"
)

const internalErrorMessage = "внутренняя ошибка сервера"

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type PaginatedResponse struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func Paginated(c *gin.Context, data interface{}, total, limit, offset int) {
	c.JSON(http.StatusOK, PaginatedResponse{
		Success: true,
		Data:    data,
		Pagination: Pagination{
			Total:   total,
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+limit < total,
		},
	})
}

// Error отдаёт ошибку в общем формате. Внутренние ошибки логируются,
// а клиент получает только обезличенное сообщение.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.HTTPStatus < http.StatusInternalServerError {
		abort(c, appErr.HTTPStatus, ErrorInfo{
			Code:    string(appErr.Code),
			Message: appErr.Message,
			Fields:  appErr.Fields,
		})
		return
	}

	logger.WithFields(logrus.Fields{
		"error":  err.Error(),
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("http: внутренняя ошибка")

	code := apperror.ErrCodeInternal
	if appErr != nil {
		code = appErr.Code
	}
	abort(c, http.StatusInternalServerError, ErrorInfo{
		Code:    string(code),
		Message: internalErrorMessage,
	})
}

func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, ErrorInfo{
		Code:    string(apperror.ErrCodeBadRequest),
		Message: message,
	})
}

// ValidationFailed отвечает ошибкой валидации одного поля запроса.
func ValidationFailed(c *gin.Context, field, message string) {
	Error(c, apperror.Validation(map[string]string{field: message}))
}

func NotFound(c *gin.Context, message string) {
	abort(c, http.StatusNotFound, ErrorInfo{
		Code:    string(apperror.ErrCodeNotFound),
		Message: message,
	})
}

func Unauthorized(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, ErrorInfo{
		Code:    string(apperror.ErrCodeUnauthorized),
		Message: message,
	})
}

func Forbidden(c *gin.Context, message string) {
	abort(c, http.StatusForbidden, ErrorInfo{
		Code:    string(apperror.ErrCodeForbidden),
		Message: message,
	})
}

func TooManyRequests(c *gin.Context, message string) {
	abort(c, http.StatusTooManyRequests, ErrorInfo{
		Code:    "RATE_LIMITED",
		Message: message,
	})
}

func abort(c *gin.Context, status int, info ErrorInfo) {
	c.AbortWithStatusJSON(status, Response{
		Success: false,
		Error:   &info,
	})
}
