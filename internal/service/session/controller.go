package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"oral-health-intake-service/internal/assessment"
	"oral-health-intake-service/internal/observability/logging"
	"oral-health-intake-service/internal/observability/metrics"
	"oral-health-intake-service/internal/service/extract"
	"oral-health-intake-service/internal/service/form"
	"oral-health-intake-service/internal/service/records"
	"oral-health-intake-service/internal/service/transcription"
)

// Event names used in logs and metrics.
const (
	EventSubmitInfo = "submit_info"
	EventAudioReady = "audio_ready"
	EventSave       = "save"
	EventDownload   = "download"
)

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) transcription.Result
}

type Extractor interface {
	Extract(ctx context.Context, questions extract.QuestionSet, passage string) ([]extract.Answer, error)
}

type RecordStore interface {
	Insert(ctx context.Context, rec assessment.Record) (records.Confirmation, error)
	FetchAll(ctx context.Context) ([]assessment.Record, error)
}

type Exporter interface {
	Export(ctx context.Context, recs []assessment.Record) (string, error)
}

// Session retention used when Deps leaves it unset.
const (
	DefaultIdleTTL   = 30 * time.Minute
	DefaultClosedTTL = time.Hour
)

// Deps are the pipeline components a Manager drives.
type Deps struct {
	Transcriber Transcriber
	Extractor   Extractor
	Questions   extract.QuestionSet
	Records     RecordStore
	Exporter    Exporter

	// IdleTTL closes sessions with no events for this long.
	IdleTTL time.Duration
	// ClosedTTL is how long a closed id keeps answering ErrSessionClosed
	// before it is forgotten.
	ClosedTTL time.Duration
}

// Session is one user's intake session.
type Session struct {
	ID        string
	CreatedAt time.Time

	lifecycle  *Lifecycle
	mu         sync.Mutex
	doctorName string
	location   string
	lastSeen   time.Time
}

func (s *Session) State() State {
	return s.lifecycle.State()
}

// Doctor returns the last submitted doctor name and location.
func (s *Session) Doctor() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doctorName, s.location
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Manager is the registry of open sessions and runs their events.
// Idle sessions and old closed ids are dropped by Sweep.
type Manager struct {
	deps    Deps
	mu      sync.Mutex
	open    map[string]*Session
	closed  map[string]time.Time
	now     func() time.Time
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewManager(deps Deps) *Manager {
	if deps.Questions == nil {
		deps.Questions = extract.DefaultQuestions()
	}
	if deps.IdleTTL <= 0 {
		deps.IdleTTL = DefaultIdleTTL
	}
	if deps.ClosedTTL <= 0 {
		deps.ClosedTTL = DefaultClosedTTL
	}
	return &Manager{
		deps:    deps,
		open:    make(map[string]*Session),
		closed:  make(map[string]time.Time),
		now:     time.Now,
		metrics: metrics.DefaultMetrics,
		log:     logging.WithComponent("session"),
	}
}

// Create opens a new session.
func (m *Manager) Create() *Session {
	now := m.now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		lastSeen:  now,
	}
	s.lifecycle = NewLifecycle(s.ID)

	m.mu.Lock()
	m.open[s.ID] = s
	m.mu.Unlock()

	m.metrics.RecordSessionStart()
	log := logging.WithSession(s.ID)
	log.Info().Msg("session created")
	return s
}

// Get returns an open session and marks it as active.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.open[id]; ok {
		s.touch(m.now())
		return s, nil
	}
	if _, ok := m.closed[id]; ok {
		return nil, ErrSessionClosed
	}
	return nil, ErrSessionNotFound
}

// Close ends a session. Later events for it return ErrSessionClosed.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.open[id]
	if ok {
		delete(m.open, id)
		m.closed[id] = m.now()
	}
	m.mu.Unlock()

	if !ok {
		_, err := m.Get(id)
		return err
	}
	if s.lifecycle.Close() {
		m.metrics.RecordSessionEnd()
		log := logging.WithSession(id)
		log.Info().Msg("session closed")
	}
	return nil
}

// Active returns the number of open sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open)
}

// Sweep closes sessions idle for longer than the idle TTL and forgets closed
// ids older than the closed TTL. It returns how many sessions it closed.
func (m *Manager) Sweep() int {
	now := m.now()
	var expired []*Session
	forgotten := 0

	m.mu.Lock()
	for id, s := range m.open {
		if now.Sub(s.idleSince()) > m.deps.IdleTTL {
			delete(m.open, id)
			m.closed[id] = now
			expired = append(expired, s)
		}
	}
	for id, at := range m.closed {
		if now.Sub(at) > m.deps.ClosedTTL {
			delete(m.closed, id)
			forgotten++
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		last := s.State()
		if s.lifecycle.Close() {
			m.metrics.RecordSessionEnd()
		}
		log := logging.WithSession(s.lifecycle.SessionId())
		log.Info().Str("lastState", last.String()).Msg("idle session expired")
	}
	if len(expired) > 0 || forgotten > 0 {
		m.log.Info().
			Int("expired", len(expired)).
			Int("forgotten", forgotten).
			Int("active", m.Active()).
			Msg("session sweep")
	}
	return len(expired)
}

// Run calls Sweep every interval until ctx is done. A non-positive interval
// means one minute.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// SubmitInfo records the doctor's name and location and echoes them back.
func (m *Manager) SubmitInfo(ctx context.Context, id, doctorName, location string) (string, error) {
	s, err := m.Get(id)
	if err == nil {
		err = s.lifecycle.SubmitInfo()
	}
	m.metrics.RecordSessionEvent(EventSubmitInfo, err)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.doctorName, s.location = doctorName, location
	s.mu.Unlock()

	log := logging.WithSession(id)
	log.Info().Str("event", EventSubmitInfo).Msg("doctor info submitted")
	return fmt.Sprintf("Doctor's Name: %s<br>Location: %s", doctorName, location), nil
}

// AudioReady runs transcription, extraction and mapping for a recording and
// returns the form.DisplaySlots values. Pipeline failures are returned as
// slots filled with the failure text, not as an error. Empty doctorName or
// location fall back to the values from SubmitInfo.
func (m *Manager) AudioReady(ctx context.Context, id, audioPath, doctorName, location string) ([]string, error) {
	s, err := m.Get(id)
	if err == nil {
		err = s.lifecycle.CheckOpen()
	}
	if err == nil && audioPath == "" {
		err = ErrNoAudio
	}
	if err != nil {
		m.metrics.RecordSessionEvent(EventAudioReady, err)
		return nil, err
	}

	submittedName, submittedLocation := s.Doctor()
	if doctorName == "" {
		doctorName = submittedName
	}
	if location == "" {
		location = submittedLocation
	}
	log := logging.WithSession(id).With().Str("event", EventAudioReady).Logger()

	res := m.deps.Transcriber.Transcribe(ctx, audioPath)
	if res.Failed() {
		m.metrics.RecordSessionEvent(EventAudioReady, fmt.Errorf("transcription %s", res.Kind))
		log.Warn().Str("kind", string(res.Kind)).Msg("transcription failed, form not populated")
		return form.Failure(res.Reason), nil
	}

	answers, err := m.deps.Extractor.Extract(ctx, m.deps.Questions, res.Text)
	if err != nil {
		m.metrics.RecordSessionEvent(EventAudioReady, err)
		log.Warn().Err(err).Msg("extraction failed, form not populated")
		return form.Failure(err.Error()), nil
	}

	if err := s.lifecycle.Populate(); err != nil {
		m.metrics.RecordSessionEvent(EventAudioReady, err)
		return nil, err
	}
	m.metrics.RecordSessionEvent(EventAudioReady, nil)
	log.Info().
		Int("answers", len(answers)).
		Int("encounter", s.lifecycle.Encounter()).
		Msg("form populated")
	return form.Populate(answers, doctorName, location), nil
}

// Save persists the completed form and returns the outcome text. A failed
// insert is reported in the text; the error is only set for lifecycle
// violations.
func (m *Manager) Save(ctx context.Context, id string, rec assessment.Record) (string, error) {
	s, err := m.Get(id)
	if err == nil {
		err = s.lifecycle.CheckOpen()
	}
	if err != nil {
		m.metrics.RecordSessionEvent(EventSave, err)
		return "", err
	}
	log := logging.WithSession(id).With().Str("event", EventSave).Logger()

	conf, err := m.deps.Records.Insert(ctx, rec)
	if err != nil {
		m.metrics.RecordSessionEvent(EventSave, err)
		log.Warn().Err(err).Msg("save failed")
		return "Error saving answers: " + err.Error(), nil
	}

	if err := s.lifecycle.Save(); err != nil {
		m.metrics.RecordSessionEvent(EventSave, err)
		return "", err
	}
	m.metrics.RecordSessionEvent(EventSave, nil)
	log.Info().Int64("recordId", conf.Record.ID).Msg("form saved")
	return conf.Message(), nil
}

// Download exports every stored record and returns the file path, or "" when
// there is nothing to export.
func (m *Manager) Download(ctx context.Context) (string, error) {
	recs, err := m.deps.Records.FetchAll(ctx)
	if err != nil {
		m.metrics.RecordSessionEvent(EventDownload, err)
		return "", err
	}
	if recs == nil {
		m.metrics.RecordSessionEvent(EventDownload, nil)
		return "", nil
	}

	path, err := m.deps.Exporter.Export(ctx, recs)
	m.metrics.RecordSessionEvent(EventDownload, err)
	if err != nil {
		m.log.Error().Err(err).Msg("export failed")
		return "", err
	}
	return path, nil
}
