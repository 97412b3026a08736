package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vsinha/bomkit/pkg/domain/entities"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Code    int                   `json:"code"`
	Message string                `json:"message"`
	Data    any                   `json:"data,omitempty"`
	Errors  []entities.FieldError `json:"errors,omitempty"`
}

// Error codes are the HTTP status times 100 plus a detail digit.
const (
	CodeBadRequest   = 40000
	CodeNotFound     = 40400
	CodeCancelled    = 40900
	CodePrecondition = 42200
	CodeInternal     = 50000
)

const jsonContentType = "application/json; charset=utf-8"

// encode renders a success envelope around data.
func encode(data any) ([]byte, error) {
	body, err := json.Marshal(Response{Code: 0, Message: "success", Data: data})
	if err != nil {
		return nil, fmt.Errorf("encode response: %w", err)
	}
	return body, nil
}

func errorResponse(c *gin.Context, code int, message string) {
	status := code / 100
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}
	c.JSON(status, Response{Code: code, Message: message})
}

func badRequest(c *gin.Context, message string) {
	errorResponse(c, CodeBadRequest, message)
}

// fail maps a service error to a response. Validation failures carry their
// field messages.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)

	var verrs *entities.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, Response{Code: CodeBadRequest, Message: err.Error(), Errors: verrs.Errors})
	case errors.Is(err, entities.ErrValidation):
		badRequest(c, err.Error())
	case errors.Is(err, entities.ErrNotFound):
		errorResponse(c, CodeNotFound, err.Error())
	case errors.Is(err, entities.ErrCancelled):
		errorResponse(c, CodeCancelled, err.Error())
	case errors.Is(err, entities.ErrPrecondition), errors.Is(err, entities.ErrNothingToOrder):
		errorResponse(c, CodePrecondition, err.Error())
	default:
		errorResponse(c, CodeInternal, err.Error())
	}
}
