package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/chainreaction/internal/api/apierr"
	"github.com/mcoot/chainreaction/internal/model"
	"github.com/mcoot/chainreaction/internal/services/game"
)

type contextKey string

const seatContextKey contextKey = "seat"

// SeatAuth authenticates the bearer seat token against the game named by the {id} route variable
func SeatAuth(games game.ControllerInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			gameID := model.GameID(mux.Vars(r)["id"])
			seat, err := games.Authenticate(r.Context(), gameID, token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), seatContextKey, seat)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken reads the seat token from the Authorization header
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// GetSeat returns the authenticated seat from the request context
func GetSeat(ctx context.Context) *model.Seat {
	seat, _ := ctx.Value(seatContextKey).(*model.Seat)
	return seat
}

// MustGetSeat returns the authenticated seat or panics
func MustGetSeat(ctx context.Context) *model.Seat {
	seat := GetSeat(ctx)
	if seat == nil {
		panic("no seat in context - seat auth middleware not applied?")
	}
	return seat
}
