package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform response body. ErrorCode is a stable
// machine-readable identifier and is empty on success.
type Envelope[T any] struct {
	IsSuccess bool      `json:"isSuccess"`
	Message   string    `json:"message"`
	ErrorCode string    `json:"errorCode,omitempty"`
	RequestID string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Data      T         `json:"data,omitempty"`
}

func Success[T any](c *gin.Context, status int, message string, data T) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, Envelope[T]{
		IsSuccess: true,
		Message:   message,
		RequestID: c.GetString("request_id"),
		Timestamp: time.Now().UTC(),
		Data:      data,
	})
}

func Error(c *gin.Context, status int, errorCode, message string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.JSON(status, Envelope[any]{
		IsSuccess: false,
		Message:   message,
		ErrorCode: errorCode,
		RequestID: c.GetString("request_id"),
		Timestamp: time.Now().UTC(),
	})
}
