// Package httpapi serves the operations endpoints: health, reply preview and the birthdays calendar
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/codegangsta/chartbot/internal/birthdays"
	"github.com/codegangsta/chartbot/internal/replies"
	"github.com/codegangsta/chartbot/internal/types"
)

// BirthdayLister lists every stored birthday
type BirthdayLister interface {
	List(ctx context.Context) ([]types.BirthdayRecord, error)
}

// Server exposes the ops endpoints
type Server struct {
	srv       *http.Server
	replies   *replies.Handler
	birthdays BirthdayLister
	validate  *validator.Validate
	now       func() time.Time
	logger    *slog.Logger
}

// NewServer creates a server listening on addr
func NewServer(addr string, handler *replies.Handler, lister BirthdayLister, logger *slog.Logger) *Server {
	s := &Server{
		replies:   handler,
		birthdays: lister,
		validate:  validator.New(),
		now:       time.Now,
		logger:    logger,
	}
	s.srv = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Router builds the route table
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Post("/replies/preview", s.previewReply)
	r.Get("/birthdays.ics", s.birthdaysCalendar)
	return r
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("ops server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("ops server stopped")
	return nil
}

type previewRequest struct {
	Text   string `json:"text" validate:"required,max=4096"`
	Sender string `json:"sender" validate:"omitempty,max=64"`
}

type previewResponse struct {
	CycleID string `json:"cycle_id"`
	Command string `json:"command"`
	RawDate string `json:"raw_date,omitempty"`
	Outcome string `json:"outcome"`
	Reply   string `json:"reply"`
}

// previewReply runs a reply cycle without posting anything. Birthday registrations are stored.
func (s *Server) previewReply(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	sender := req.Sender
	if sender == "" {
		sender = "preview"
	}
	reply := s.replies.Handle(r.Context(), types.InboundMessage{
		ID:           chiMiddleware.GetReqID(r.Context()),
		Platform:     "preview",
		Text:         req.Text,
		SenderHandle: sender,
		ReceivedAt:   s.now(),
	})

	JSON(w, http.StatusOK, previewResponse{
		CycleID: reply.CycleID,
		Command: reply.Command.Kind.String(),
		RawDate: reply.Command.RawDate,
		Outcome: reply.Outcome.Kind.String(),
		Reply:   reply.Text,
	})
}

func (s *Server) birthdaysCalendar(w http.ResponseWriter, r *http.Request) {
	records, err := s.birthdays.List(r.Context())
	if err != nil {
		s.logger.Error("listing birthdays", "error", err)
		Error(w, http.StatusInternalServerError, "could not list birthdays")
		return
	}

	var buf bytes.Buffer
	if err := birthdays.WriteCalendar(&buf, records, s.now()); err != nil {
		s.logger.Error("encoding birthdays calendar", "error", err)
		Error(w, http.StatusInternalServerError, "could not encode calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// JSON writes v as a JSON response
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

// Error writes a JSON error response
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
