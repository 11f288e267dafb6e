package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"oral-health-intake-service/internal/assessment"
	"oral-health-intake-service/internal/observability/logging"
	"oral-health-intake-service/internal/service/audio"
	"oral-health-intake-service/internal/service/form"
	"oral-health-intake-service/internal/service/session"
)

const (
	// multipartSlack covers form fields and part headers around the audio body.
	multipartSlack = 1 << 20
	maxFieldBytes  = 4 << 10
	maxJSONBytes   = 1 << 20
)

// Sessions is the session event API served over HTTP.
type Sessions interface {
	Create() *session.Session
	Get(id string) (*session.Session, error)
	Close(id string) error
	SubmitInfo(ctx context.Context, id, doctorName, location string) (string, error)
	AudioReady(ctx context.Context, id, audioPath, doctorName, location string) ([]string, error)
	Save(ctx context.Context, id string, rec assessment.Record) (string, error)
	Download(ctx context.Context) (string, error)
}

// Handler serves the intake form endpoints.
type Handler struct {
	sessions Sessions
	spool    *audio.Spool
	ready    func(ctx context.Context) error
	maxBody  int64
}

type doctorRequest struct {
	DoctorName string `json:"doctorName"`
	Location   string `json:"location"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
	State     string `json:"state"`
}

type audioResponse struct {
	Values []string    `json:"values"`
	Slots  []form.Slot `json:"slots"`
}

type fieldSpec struct {
	Field          assessment.Field `json:"field"`
	Label          string           `json:"label"`
	Choices        []string         `json:"choices,omitempty"`
	Extractable    bool             `json:"extractable"`
	Classification bool             `json:"classification"`
}

type formResponse struct {
	Fields []fieldSpec `json:"fields"`
	Slots  []form.Slot `json:"slots"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) readiness(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(err.Error()))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *Handler) form(w http.ResponseWriter, _ *http.Request) {
	fields := make([]fieldSpec, 0, len(assessment.ContentFields))
	for _, f := range assessment.ContentFields {
		fields = append(fields, fieldSpec{
			Field:          f,
			Label:          f.Label(),
			Choices:        assessment.Choices(f),
			Extractable:    f.IsExtractable(),
			Classification: f.IsClassification(),
		})
	}
	writeJSON(w, http.StatusOK, formResponse{
		Fields: fields,
		Slots:  form.Label(make([]string, form.DisplaySlots)),
	})
}

func (h *Handler) createSession(w http.ResponseWriter, _ *http.Request) {
	s := h.sessions.Create()
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: s.ID, State: s.State().String()})
}

func (h *Handler) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(chi.URLParam(r, "sessionId")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) submitInfo(w http.ResponseWriter, r *http.Request) {
	var req doctorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	text, err := h.sessions.SubmitInfo(r.Context(), chi.URLParam(r, "sessionId"), req.DoctorName, req.Location)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: text})
}

// uploadAudio streams a multipart upload with an "audio" file part and
// optional "doctorName" and "location" fields.
func (h *Handler) uploadAudio(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionId")
	if _, err := h.sessions.Get(id); err != nil {
		writeError(w, r, err)
		return
	}
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody+multipartSlack)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	var (
		rec        audio.Recording
		spooled    bool
		doctorName string
		location   string
	)
	defer func() {
		if spooled {
			if err := h.spool.Remove(rec); err != nil {
				log := requestLogger(r)
				log.Warn().Err(err).Str("path", rec.Path).Msg("removing spooled audio")
			}
		}
	}()

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			writeError(w, r, err)
			return
		}

		switch part.FormName() {
		case "audio":
			if spooled {
				break
			}
			rec, err = h.spool.Save(id, part.FileName(), part)
			if err != nil {
				part.Close()
				writeError(w, r, err)
				return
			}
			spooled = true
		case "doctorName":
			doctorName, err = readField(part)
		case "location":
			location, err = readField(part)
		}
		part.Close()
		if err != nil {
			writeError(w, r, err)
			return
		}
	}

	values, err := h.sessions.AudioReady(r.Context(), id, rec.Path, doctorName, location)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, audioResponse{Values: values, Slots: form.Label(values)})
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var rec assessment.Record
	if err := decodeJSON(r, &rec); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	text, err := h.sessions.Save(r.Context(), chi.URLParam(r, "sessionId"), rec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: text})
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	path, err := h.sessions.Download(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if path == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

func readField(r io.Reader) (string, error) {
	b, err := io.ReadAll(io.LimitReader(r, maxFieldBytes))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, session.ErrNoAudio):
		return http.StatusBadRequest
	case errors.Is(err, audio.ErrTooLarge), errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		log := requestLogger(r)
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogger(r *http.Request) zerolog.Logger {
	return logging.WithComponent("http").With().
		Str("path", r.URL.Path).
		Str("sessionId", chi.URLParam(r, "sessionId")).
		Logger()
}
