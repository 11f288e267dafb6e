// Package audio spools uploaded encounter recordings to disk so they can be
// handed to a speech-to-text provider by path.
package audio

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lukechampine.com/blake3"

	"oral-health-intake-service/internal/observability/logging"
	"oral-health-intake-service/internal/observability/metrics"
)

var ErrTooLarge = errors.New("audio exceeds maximum size")

// Limits bounds a single upload.
type Limits struct {
	MaxAudioBytes int64
}

func DefaultLimits() Limits {
	return Limits{
		MaxAudioBytes: 100 * 1024 * 1024, // 100MB, about 55 minutes of 16kHz 16-bit mono
	}
}

// Recording is an upload written to the spool.
type Recording struct {
	ID         string
	SessionID  string
	Path       string
	Bytes      int64
	Blake3     string
	ReceivedAt time.Time
}

// Spool writes uploads under dir.
type Spool struct {
	dir     string
	limits  Limits
	ids     *IDGenerator
	metrics *metrics.Metrics
}

func NewSpool(dir string, limits Limits) *Spool {
	return &Spool{
		dir:     dir,
		limits:  limits,
		ids:     NewIDGenerator(),
		metrics: metrics.DefaultMetrics,
	}
}

// Save copies r to a new file named after a fresh recording id. Zero-byte
// uploads are kept; the transcription step reports them.
func (s *Spool) Save(sessionId, filename string, r io.Reader) (Recording, error) {
	rec := Recording{
		ID:         s.ids.Next(sessionId),
		SessionID:  sessionId,
		ReceivedAt: time.Now(),
	}
	rec.Path = filepath.Join(s.dir, rec.ID+extension(filename))
	log := logging.WithRecording(sessionId, rec.ID)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.metrics.RecordAudioUpload(0, err)
		return Recording{}, fmt.Errorf("creating upload dir: %w", err)
	}
	f, err := os.Create(rec.Path)
	if err != nil {
		s.metrics.RecordAudioUpload(0, err)
		return Recording{}, fmt.Errorf("creating recording file: %w", err)
	}

	src := r
	if s.limits.MaxAudioBytes > 0 {
		src = io.LimitReader(r, s.limits.MaxAudioBytes+1)
	}
	h := blake3.New(32, nil)
	n, err := io.Copy(io.MultiWriter(f, h), src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && s.limits.MaxAudioBytes > 0 && n > s.limits.MaxAudioBytes {
		err = fmt.Errorf("%w: more than %d bytes", ErrTooLarge, s.limits.MaxAudioBytes)
	}
	if err != nil {
		os.Remove(rec.Path)
		s.metrics.RecordAudioUpload(n, err)
		log.Warn().Err(err).Int64("bytes", n).Msg("audio upload rejected")
		return Recording{}, err
	}

	rec.Bytes = n
	rec.Blake3 = hex.EncodeToString(h.Sum(nil))
	s.metrics.RecordAudioUpload(n, nil)
	log.Info().
		Int64("bytes", n).
		Str("blake3", rec.Blake3).
		Msg("audio spooled")
	return rec, nil
}

// Remove deletes a spooled recording. Missing files are not an error.
func (s *Spool) Remove(rec Recording) error {
	if err := os.Remove(rec.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".wav", ".mp3", ".m4a", ".ogg", ".webm", ".flac":
		return ext
	default:
		return ".wav"
	}
}
