package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/edh-dashboard-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// AbortError writes the envelope and stops the handler chain.
func AbortError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}

// RespondErr maps err onto the envelope. *apierr.Error values keep their status and message;
// anything else is recorded on the context and surfaces as a generic 500.
func RespondErr(c *gin.Context, err error) {
	if err == nil {
		RespondError(c, http.StatusInternalServerError, "internal", errors.New("Internal server error"))
		return
	}
	_ = c.Error(err)
	if e, ok := apierr.As(err); ok && e.Status != 0 {
		code := e.Code
		if code == "" {
			code = codeFor(e.Status)
		}
		msg := http.StatusText(e.Status)
		if e.Err != nil {
			msg = e.Err.Error()
		}
		RespondError(c, e.Status, code, errors.New(msg))
		return
	}
	RespondError(c, http.StatusInternalServerError, "internal", errors.New("Internal server error"))
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func codeFor(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	}
	if status >= 500 {
		return "internal"
	}
	return "error"
}
