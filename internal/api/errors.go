package api

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v5"
	"github.com/samcharles93/visualforge/internal/forge"
	"github.com/samcharles93/visualforge/pkg/usermap"
)

var ErrInvalidRequest = errors.New("invalid_request")

type invalidRequestError struct {
	msg string
}

func (e invalidRequestError) Error() string {
	return e.msg
}

func (e invalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}

func newInvalidRequest(msg string) error {
	return invalidRequestError{msg: msg}
}

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": ErrorBody{
			Message: msg,
			Type:    errType,
		},
	})
}

// writeFailure maps domain errors onto status codes. The missing tag list
// check must come before the not-found check: it wraps fs.ErrNotExist.
func writeFailure(c *echo.Context, err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return writeBadRequest(c, err.Error())
	case errors.Is(err, usermap.ErrMissingTaglist):
		return writeError(c, http.StatusFailedDependency, "missing_taglist_error", err.Error())
	case errors.Is(err, usermap.ErrInvalidMagic), errors.Is(err, usermap.ErrUnknownCodec):
		return writeError(c, http.StatusUnprocessableEntity, "invalid_usermap_error", err.Error())
	case errors.Is(err, forge.ErrIndex), errors.Is(err, fs.ErrNotExist):
		return writeNotFound(c, err.Error())
	case errors.Is(err, forge.ErrReadOnly), errors.Is(err, forge.ErrClosed):
		return writeError(c, http.StatusConflict, "conflict_error", err.Error())
	default:
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
}
