package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/chainreaction/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"request_id,omitempty"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidPosition     = "INVALID_POSITION"
	CodeInvalidConfig       = "INVALID_CONFIG"
	CodeInvalidBoard        = "INVALID_BOARD"
	CodeInvalidPreset       = "INVALID_PRESET"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotYourTurn         = "NOT_YOUR_TURN"
	CodeCellNotOwnable      = "CELL_NOT_OWNABLE"
	CodeGameFinished        = "GAME_FINISHED"
	CodeUnknownPlayer       = "UNKNOWN_PLAYER"
	CodeNothingToUndo       = "NOTHING_TO_UNDO"
	CodeNothingToRedo       = "NOTHING_TO_REDO"
	CodeGameNotFound        = "GAME_NOT_FOUND"
	CodePresetNotFound      = "PRESET_NOT_FOUND"
	CodeResolutionOverflow  = "RESOLUTION_OVERFLOW"
	CodeNotFound            = "NOT_FOUND"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	status, apiError := FromError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: apiError})
}

// FromError maps an error to its HTTP status and stable error code
func FromError(err error) (int, APIError) {
	he := toHTTPError(err)
	return he.status, he.apiError
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Hosting errors
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrInvalidSeatToken):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid seat token"}}
	case errors.Is(err, model.ErrPresetNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePresetNotFound, "Preset not found"}}

	// Move errors
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusConflict, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrCellNotOwnable):
		return &httpError{http.StatusConflict, APIError{CodeCellNotOwnable, "Cell is owned by another player"}}
	case errors.Is(err, model.ErrGameAlreadyFinished):
		return &httpError{http.StatusConflict, APIError{CodeGameFinished, "Game is already finished"}}
	case errors.Is(err, model.ErrInvalidPosition), errors.Is(err, model.ErrOutOfBounds):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPosition, "Invalid board position"}}
	case errors.Is(err, model.ErrUnknownPlayer):
		return &httpError{http.StatusBadRequest, APIError{CodeUnknownPlayer, "Unknown player"}}

	// History errors
	case errors.Is(err, model.ErrNothingToUndo):
		return &httpError{http.StatusConflict, APIError{CodeNothingToUndo, "Nothing to undo"}}
	case errors.Is(err, model.ErrNothingToRedo):
		return &httpError{http.StatusConflict, APIError{CodeNothingToRedo, "Nothing to redo"}}

	// Validation errors carry their detail
	case errors.Is(err, model.ErrInvalidConfig):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidConfig, err.Error()}}
	case errors.Is(err, model.ErrInvalidPreset):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPreset, err.Error()}}
	case errors.Is(err, model.ErrInvalidBoard):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidBoard, err.Error()}}

	case errors.Is(err, model.ErrResolutionOverflow):
		return &httpError{http.StatusInternalServerError, APIError{CodeResolutionOverflow, "Chain reaction did not settle"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) error {
	return &httpError{http.StatusForbidden, APIError{CodeForbidden, message}}
}

// NewNotFoundError creates a not found error for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
