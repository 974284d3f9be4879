package api

import "github.com/gin-gonic/gin"

// Response is the envelope every endpoint answers with.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data,omitempty"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	RequestID  string `json:"requestID,omitempty"`
}

func respond(c *gin.Context, code int, data any, message string) {
	c.JSON(code, Response{
		StatusCode: code,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

// fail aborts the request so no later handler runs after an error
func fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Response{
		StatusCode: code,
		Message:    message,
		Success:    false,
		RequestID:  c.GetString("requestID"),
	})
}
