package chat

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/ashureev/campusguide/internal/api"
	"github.com/ashureev/campusguide/internal/domain"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// defaultMaxRequestBodySize is the default maximum allowed request body size (1MB).
const defaultMaxRequestBodySize = 1 << 20

const (
	replyEmptyMessage = "Please ask a question."
	replyBadRequest   = "Invalid request body."
	replyRateLimited  = "Too many requests. Please slow down."
)

// Request is the body of POST /chat.
type Request struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

// HistoryResponse is the body of GET /chat/{sessionID}/history.
type HistoryResponse struct {
	SessionID string        `json:"sessionId"`
	Turns     []domain.Turn `json:"turns"`
}

// TranscriptResponse is the body of GET /chat/{sessionID}/transcript.
type TranscriptResponse struct {
	SessionID string                   `json:"sessionId"`
	Entries   []domain.TranscriptEntry `json:"entries"`
}

// Handler serves the chat HTTP API.
type Handler struct {
	svc         *Service
	limiter     *RateLimiter
	maxBodySize int64
}

// NewHandler creates a chat handler. A nil limiter disables rate limiting.
func NewHandler(svc *Service, limiter *RateLimiter, maxBodySize int64) *Handler {
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxRequestBodySize
	}
	return &Handler{
		svc:         svc,
		limiter:     limiter,
		maxBodySize: maxBodySize,
	}
}

// RegisterRoutes registers chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.HandleChat)
	r.Get("/chat/{sessionID}/history", h.HandleHistory)
	r.Get("/chat/{sessionID}/transcript", h.HandleTranscript)
	r.Delete("/chat/{sessionID}", h.HandleReset)
}

// HandleChat handles POST /chat requests.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow(clientIP(r)) {
		api.Reply(w, http.StatusTooManyRequests, replyRateLimited)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Reply(w, http.StatusRequestEntityTooLarge, "Message is too long.")
			return
		}
		api.Reply(w, http.StatusBadRequest, replyBadRequest)
		return
	}

	reply, err := h.svc.Chat(r.Context(), req.SessionID, req.Message)
	if errors.Is(err, ErrEmptyMessage) {
		api.Reply(w, http.StatusBadRequest, replyEmptyMessage)
		return
	}
	if err != nil {
		slog.Error("Chat request failed",
			"session_id", req.SessionID,
			"request_id", chiMiddleware.GetReqID(r.Context()),
			"error", err,
		)
		api.Reply(w, http.StatusInternalServerError, api.ErrorReply(err))
		return
	}

	api.Reply(w, http.StatusOK, reply.Text)
}

// HandleHistory handles GET /chat/{sessionID}/history requests.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	turns := h.svc.History(sessionID)
	if turns == nil {
		turns = []domain.Turn{}
	}
	api.JSON(w, http.StatusOK, HistoryResponse{SessionID: sessionID, Turns: turns})
}

// HandleTranscript handles GET /chat/{sessionID}/transcript requests.
// The optional limit query parameter keeps only the most recent entries.
func (h *Handler) HandleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			api.Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := h.svc.Transcript(r.Context(), sessionID, limit)
	if errors.Is(err, ErrTranscriptsDisabled) {
		api.Error(w, http.StatusNotFound, "transcripts are disabled")
		return
	}
	if err != nil {
		slog.Error("Transcript request failed",
			"session_id", sessionID,
			"request_id", chiMiddleware.GetReqID(r.Context()),
			"error", err,
		)
		api.Error(w, http.StatusInternalServerError, "failed to load transcript")
		return
	}
	if entries == nil {
		entries = []domain.TranscriptEntry{}
	}
	api.JSON(w, http.StatusOK, TranscriptResponse{SessionID: sessionID, Entries: entries})
}

// HandleReset handles DELETE /chat/{sessionID} requests.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if !h.svc.Reset(sessionID) {
		api.Error(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// clientIP returns the remote IP, already normalized by chi's RealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
