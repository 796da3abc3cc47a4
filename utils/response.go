package utils

import "github.com/gin-gonic/gin"

// ErrorBody is the uniform error payload for API responses.
type ErrorBody struct {
	Message string `json:"message"`
}

// Error writes a JSON error response with the given status code. Messages
// are user-facing; internal details belong in logs, never here.
func Error(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, ErrorBody{Message: message})
}

// JSON writes the resource itself as the response body.
func JSON(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, data)
}
