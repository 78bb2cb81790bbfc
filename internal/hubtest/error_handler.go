package hubtest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// errorResponse is the hub's error envelope: {"error": "<message>"}.
type errorResponse struct {
	Error string `json:"error"`
}

// fieldErrors is the envelope for rejected input: {"error": [{"message": ...}]}.
type fieldErrors struct {
	Error []fieldMessage `json:"error"`
}

type fieldMessage struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// newHTTPErrorHandler renders echo errors in the hub's envelope and hides
// anything unexpected behind a generic 500.
func newHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			_ = c.JSON(he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)})
			return
		}

		log.Error().
			Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Request().URL.Path).
			Msg("unhandled hub error")
		_ = c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
