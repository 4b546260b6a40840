// Package api exposes the query service over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// envelope is the uniform response body. Code 0 means success; any
// other code carries a human-readable message and no data.
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const (
	codeOK            = 0
	codeInvalidParams = 1
	codeNotFound      = 2
	codeInternal      = 3
)

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, envelope{Code: codeOK, Message: "ok", Data: data})
}

func respondError(c *gin.Context, status, code int, message string) {
	c.JSON(status, envelope{Code: code, Message: message})
}
