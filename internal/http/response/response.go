package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/EndaleK/Synaptic-sub012/internal/domain/aggregates"
	"github.com/EndaleK/Synaptic-sub012/internal/platform/apierr"
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

// RespondDomainError translates a service or aggregate error into its HTTP
// shape. Coded errors map by code; anything untyped is treated as internal
// under the given fallback code.
func RespondDomainError(c *gin.Context, fallbackCode string, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		RespondError(c, apiErr.Status, apiErr.Code, apiErr)
		return
	}

	code := domainagg.CodeOf(err)
	switch code {
	case domainagg.CodeValidation:
		RespondError(c, http.StatusBadRequest, string(code), err)
	case domainagg.CodeNotFound:
		RespondError(c, http.StatusNotFound, string(code), err)
	case domainagg.CodeConflict:
		RespondError(c, http.StatusConflict, string(code), err)
	case domainagg.CodePreconditionFailed:
		RespondError(c, http.StatusPreconditionFailed, string(code), err)
	case domainagg.CodeInvariantViolation:
		RespondError(c, http.StatusUnprocessableEntity, string(code), err)
	case domainagg.CodeRetryable:
		RespondError(c, http.StatusServiceUnavailable, string(code), err)
	case domainagg.CodeInternal:
		RespondError(c, http.StatusInternalServerError, string(code), err)
	default:
		RespondError(c, http.StatusInternalServerError, fallbackCode, err)
	}
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
