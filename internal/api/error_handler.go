package api

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/vytor/memora/internal/errors"
	"github.com/vytor/memora/internal/logger"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	if stderrors.Is(err, context.DeadlineExceeded) {
		err = errors.NewUnavailableError(err)
	}
	// unknown errors become internal errors
	appErr := errors.As(err)

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else if appErr.Status >= 400 {
		log.Warn("client error: %v", appErr)
	} else {
		log.Debug("error: %v", appErr)
	}

	if appErr.Retryable() {
		w.Header().Set("Retry-After", "1")
	}
	writeJSON(w, r, appErr.Status, map[string]errorBody{
		"error": {Code: appErr.Code, Message: appErr.Message},
	})
}
