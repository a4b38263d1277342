package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"openarbitrage/internal/eventlog"
	"openarbitrage/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

// Server exposes one game session over HTTP.
type Server struct {
	log  *slog.Logger
	sess *game.Session
	sink eventlog.Sink
	mux  *chi.Mux
}

func New(logger *slog.Logger, sess *game.Session, sink eventlog.Sink) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if sink == nil {
		sink = eventlog.Nop{}
	}
	s := &Server{
		log:  logger,
		sess: sess,
		sink: sink,
		mux:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Put("/state", s.handleRestore)
		r.Post("/reset", s.handleReset)
		r.Post("/commands", s.handleCommand)
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sess.View())
}

type resetRequest struct {
	Seed        *int64   `json:"seed"`
	TravelCost  *float64 `json:"travel_cost"`
	WinNetWorth *float64 `json:"win_net_worth"`
	MaxDays     *int     `json:"max_days"`
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var in resetRequest
	if err := decodeJSON(r, &in); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rules := game.DefaultRules()
	if in.TravelCost != nil {
		rules.TravelCost = *in.TravelCost
	}
	if in.WinNetWorth != nil {
		rules.WinNetWorth = *in.WinNetWorth
	}
	if in.MaxDays != nil {
		rules.MaxDays = *in.MaxDays
	}

	var state *game.State
	if in.Seed != nil {
		state = game.NewState(*in.Seed, rules)
	} else {
		var err error
		if state, err = game.NewStateRandomSeed(rules); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	s.sess.Replace(state)
	writeJSON(w, http.StatusOK, s.sess.View())
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, err := game.UnmarshalState(raw)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.sess.Replace(state)
	writeJSON(w, http.StatusOK, s.sess.View())
}

type commandResponse struct {
	Events []game.Event `json:"events"`
	game.View
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var in game.CommandRequest
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cmd, err := in.Command()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	res, err := s.sess.Exec(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	events, view := res.Events, res.View
	// The command is already applied; persistence failures are only logged.
	if err := s.sink.Append(r.Context(), view.SessionID, events); err != nil {
		s.log.Error("persist events failed", "session_id", view.SessionID, "events", len(events), "err", err)
	}
	if events == nil {
		events = []game.Event{}
	}
	writeJSON(w, http.StatusOK, commandResponse{Events: events, View: view})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrGameFinished):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrUnsupportedVersion):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, game.ErrUnknownItem),
		errors.Is(err, game.ErrInvalidQuantity),
		errors.Is(err, game.ErrInvalidAmount),
		errors.Is(err, game.ErrInsufficientCash),
		errors.Is(err, game.ErrInsufficientInventory),
		errors.Is(err, game.ErrCapacityExceeded),
		errors.Is(err, game.ErrInvalidDestination),
		errors.Is(err, game.ErrUnsupportedCommand),
		errors.Is(err, game.ErrInvalidArgument),
		errors.Is(err, game.ErrInvalidSnapshot):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
