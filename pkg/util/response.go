package util

import (
	"log"

	"github.com/gin-gonic/gin"
)

type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
}

func HandleSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Status:  statusCode,
		Message: message,
		Data:    data,
		Meta:    nil,
	})
}

type ErrorResponse struct {
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
	Status int    `json:"status"`
}

// HandleErrorCode attaches a machine-readable error code to the envelope.
func HandleErrorCode(c *gin.Context, statusCode int, code string, err error) {
	log.Printf("error [%s]: %v", code, err)
	c.JSON(statusCode, ErrorResponse{
		Error:  err.Error(),
		Code:   code,
		Status: statusCode,
	})
}
