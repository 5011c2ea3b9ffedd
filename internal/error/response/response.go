package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"immofox-http-service/internal/error/code"
	"immofox-http-service/internal/error/errs"
)

// Response is the envelope of every JSON answer
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success answers 200 with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// Created answers 201 with the created resource
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// Fail answers with the status and message registered for errorCode
func Fail(c *gin.Context, errorCode int, data interface{}) {
	c.JSON(code.GetStatus(errorCode), Response{
		Code:    errorCode,
		Message: code.GetMessage(errorCode),
		Data:    data,
	})
}

// FailWithMessage is Fail with a custom message
func FailWithMessage(c *gin.Context, errorCode int, message string, data interface{}) {
	c.JSON(code.GetStatus(errorCode), Response{
		Code:    errorCode,
		Message: message,
		Data:    data,
	})
}

// FromError maps a service error to its code. Unknown errors are logged by
// gin and answered as database errors without leaking details.
func FromError(c *gin.Context, err error) {
	errorCode := errs.Code(err)
	if errorCode == code.ErrDatabase {
		_ = c.Error(err)
	}
	Fail(c, errorCode, nil)
}

// ParamError answers 400 with a validation message
func ParamError(c *gin.Context, message string) {
	if message == "" {
		message = code.GetMessage(code.ErrValidation)
	}
	FailWithMessage(c, code.ErrValidation, message, nil)
}

// BindError answers 400 for a body that could not be bound
func BindError(c *gin.Context, err error) {
	FailWithMessage(c, code.ErrBind, code.GetMessage(code.ErrBind)+": "+err.Error(), nil)
}

// ServerError answers 500
func ServerError(c *gin.Context) {
	Fail(c, code.ErrUnknown, nil)
}

// NotFound answers 404
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = code.GetMessage(code.ErrRecordNotFound)
	}
	FailWithMessage(c, code.ErrRecordNotFound, message, nil)
}

// Unauthorized answers 401
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = code.GetMessage(code.ErrTokenInvalid)
	}
	FailWithMessage(c, code.ErrTokenInvalid, message, nil)
}

// Forbidden answers 403
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = code.GetMessage(code.ErrForbidden)
	}
	FailWithMessage(c, code.ErrForbidden, message, nil)
}
