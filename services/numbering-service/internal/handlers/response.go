package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/grigta/numbering/pkg/apperror"
	"github.com/grigta/numbering/pkg/logger"
)

const genericErrorMessage = "Something went wrong!"

// Response is the envelope every API route answers with.
type Response struct {
	Type       string      `json:"type"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Error      string      `json:"error,omitempty"`
	Result     interface{} `json:"result"`
}

func respondSuccess(c *gin.Context, status int, message string, result interface{}) {
	c.JSON(status, Response{
		Type:       "success",
		StatusCode: status,
		Message:    message,
		Result:     result,
	})
}

// respondError writes err as an error envelope. Internal errors only expose
// their text when exposeInternal is set.
func respondError(c *gin.Context, err error, exposeInternal bool) {
	appErr := apperror.As(err)
	status := appErr.Status()

	message := appErr.Message
	if appErr.Kind == apperror.KindInternal {
		logger.WithContext(c.Request.Context()).Error("Request failed",
			logger.String("path", c.FullPath()),
			logger.Err(err),
		)
		if exposeInternal {
			message = appErr.Error()
		} else {
			message = genericErrorMessage
		}
	}

	var result interface{}
	if len(appErr.Fields) > 0 {
		result = gin.H{"fields": appErr.Fields}
	}

	c.AbortWithStatusJSON(status, Response{
		Type:       "error",
		StatusCode: status,
		Message:    message,
		Error:      message,
		Result:     result,
	})
}

func bindError() error {
	return apperror.BadRequest("Invalid request body")
}
