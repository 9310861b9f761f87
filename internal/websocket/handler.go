package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/majidsadri/mireva/internal/auth"
)

// HandleWebSocket upgrades an authenticated request and subscribes the
// connection to the caller's active pantry.
func HandleWebSocket(hub *Hub, allowedOrigins []string, logger *slog.Logger) http.HandlerFunc {
	opts := &ws.AcceptOptions{OriginPatterns: allowedOrigins}
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		// "*" accepts any origin
		opts = &ws.AcceptOptions{InsecureSkipVerify: true}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ac, ok := auth.FromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, opts)
		if err != nil {
			logger.Warn("accept websocket", "error", err)
			return
		}
		defer conn.CloseNow()

		logger.Debug("client connected", "pantry_id", ac.PantryID, "user_id", ac.UserID)
		NewClient(hub, conn, ac.PantryID, ac.UserID).Run(r.Context())
		logger.Debug("client disconnected", "pantry_id", ac.PantryID, "user_id", ac.UserID)
	}
}
