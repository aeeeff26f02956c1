package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mcoot/chainreaction/internal/api/apierr"
	"github.com/mcoot/chainreaction/internal/middleware"
)

// Recovery answers panics with a JSON INTERNAL_ERROR carrying the request ID,
// so a client report can be matched to the logged stack.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, writePanic)
}

func writePanic(w http.ResponseWriter, r *http.Request, _ any) {
	status, apiError := apierr.FromError(apierr.NewInternalError())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apierr.ErrorResponse{
		Error:     apiError,
		RequestID: middleware.GetRequestID(r.Context()),
	})
}
