package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rocketscienceinc/quicktactoe/internal/entity"
)

type programStateReader interface {
	GetProgramState(ctx context.Context) (*entity.ProgramState, error)
}

type pingHandler struct {
	logger *slog.Logger
	state  programStateReader
}

func newPingHandler(logger *slog.Logger, state programStateReader) *pingHandler {
	return &pingHandler{
		logger: logger.With("component", "rest"),
		state:  state,
	}
}

func (that *pingHandler) Ping(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// Status reports the program state, or 503 while storage is unreachable or uninitialized.
func (that *pingHandler) Status(w http.ResponseWriter, r *http.Request) {
	state, err := that.state.GetProgramState(r.Context())
	if err != nil {
		that.logger.Warn("status unavailable", "method", "Status", "error", err)
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(state); err != nil {
		that.logger.Error("failed to encode status", "method", "Status", "error", err)
	}
}
