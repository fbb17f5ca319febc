// Package server exposes the dialogue engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xeipuuv/gojsonschema"

	"ecommerce-support/internal/common/logger"
	"ecommerce-support/internal/common/observability"
	"ecommerce-support/internal/engine/dialog"
	"ecommerce-support/internal/gateway/history"
	"ecommerce-support/internal/models"
)

// DialogEngine is the inbound surface of the dialogue core.
type DialogEngine interface {
	HandleTurn(ctx context.Context, message string, convCtx map[string]interface{}) (*models.ChatResponse, error)
	CreateTicketDirect(ctx context.Context, userID int64, issue string) *models.TicketResult
}

// TurnRecorder persists completed turns. Optional.
type TurnRecorder interface {
	Record(ctx context.Context, turn history.Turn)
}

// Server wires the chat endpoints onto a chi router.
type Server struct {
	engine   DialogEngine
	recorder TurnRecorder
	obs      *observability.Observability
	log      logger.Logger
	router   chi.Router

	chatSchema   gojsonschema.JSONLoader
	ticketSchema gojsonschema.JSONLoader
}

func New(engine DialogEngine, recorder TurnRecorder, obs *observability.Observability, log logger.Logger) *Server {
	s := &Server{
		engine:   engine,
		recorder: recorder,
		obs:      obs,
		log:      log,
		chatSchema: gojsonschema.NewGoLoader(map[string]interface{}{
			"type":     "object",
			"required": []string{"message"},
			"properties": map[string]interface{}{
				"message": map[string]interface{}{"type": "string"},
				"context": map[string]interface{}{"type": "object"},
			},
		}),
		ticketSchema: gojsonschema.NewGoLoader(map[string]interface{}{
			"type":     "object",
			"required": []string{"issue"},
			"properties": map[string]interface{}{
				"user_id": map[string]interface{}{"type": "integer"},
				"issue":   map[string]interface{}{"type": "string"},
			},
		}),
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestID)

	r.Post("/api/chat", s.handleChat)
	r.Post("/api/create_ticket", s.handleCreateTicket)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// requestID tags every request with a correlation id.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := gojsonschema.Validate(s.chatSchema, gojsonschema.NewGoLoader(raw))
	if err != nil || !result.Valid() {
		s.writeError(w, http.StatusBadRequest, "No message provided")
		return
	}

	message, _ := raw["message"].(string)
	convCtx, _ := raw["context"].(map[string]interface{})

	resp, err := s.engine.HandleTurn(r.Context(), message, convCtx)
	if err != nil {
		if errors.Is(err, dialog.ErrMissingInput) {
			s.writeError(w, http.StatusBadRequest, "No message provided")
			return
		}
		s.log.Error("turn handling failed", map[string]interface{}{"error": err.Error()})
		s.writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if s.recorder != nil {
		s.recorder.Record(r.Context(), history.Turn{
			UserMessage:  message,
			BotReply:     resp.Message,
			ResponseType: string(resp.Type),
		})
	}
	if s.obs != nil {
		s.obs.RecordTurn(r.Context(), string(resp.Type))
		s.obs.RecordTurnDuration(r.Context(), time.Since(start), string(resp.Type))
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := gojsonschema.Validate(s.ticketSchema, gojsonschema.NewGoLoader(raw))
	if err != nil || !result.Valid() {
		s.writeError(w, http.StatusBadRequest, "No issue provided")
		return
	}

	issue, _ := raw["issue"].(string)
	var userID int64
	if v, ok := raw["user_id"].(float64); ok {
		userID = int64(v)
	}

	ticketResult := s.engine.CreateTicketDirect(r.Context(), userID, issue)
	if !ticketResult.Success {
		s.writeJSON(w, http.StatusInternalServerError, ticketResult)
		return
	}
	s.writeJSON(w, http.StatusOK, ticketResult)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("response encoding failed", map[string]interface{}{"error": err.Error()})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
