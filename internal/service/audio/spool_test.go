package audio

import (
	"bytes"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"lukechampine.com/blake3"
)

func TestSpool_Save(t *testing.T) {
	dir := t.TempDir()
	spool := NewSpool(dir, DefaultLimits())

	rec, err := spool.Save("sess-1", "encounter.WAV", strings.NewReader("RIFF....WAVEfmt "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.ID != "sess-1-rec-1" {
		t.Errorf("expected recording id 'sess-1-rec-1', got %s", rec.ID)
	}
	if rec.Path != filepath.Join(dir, "sess-1-rec-1.wav") {
		t.Errorf("unexpected path %s", rec.Path)
	}
	if rec.Bytes != 16 {
		t.Errorf("expected 16 bytes, got %d", rec.Bytes)
	}

	data, err := os.ReadFile(rec.Path)
	if err != nil {
		t.Fatalf("reading spooled file: %v", err)
	}
	sum := blake3.Sum256(data)
	want := hex.EncodeToString(sum[:])
	if rec.Blake3 != want {
		t.Errorf("expected fingerprint %s, got %s", want, rec.Blake3)
	}
	if len(rec.Blake3) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(rec.Blake3))
	}
}

func TestSpool_Save_EmptyUploadKept(t *testing.T) {
	spool := NewSpool(t.TempDir(), DefaultLimits())

	rec, err := spool.Save("sess-1", "empty.wav", strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(rec.Path)
	if err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("expected empty file, got %d bytes", info.Size())
	}
}

func TestSpool_Save_MaxAudioBytesLimit(t *testing.T) {
	dir := t.TempDir()
	spool := NewSpool(dir, Limits{MaxAudioBytes: 100})

	// exactly at the limit is accepted
	if _, err := spool.Save("sess-1", "a.wav", bytes.NewReader(make([]byte, 100))); err != nil {
		t.Fatalf("upload at limit should succeed: %v", err)
	}

	_, err := spool.Save("sess-1", "b.wav", bytes.NewReader(make([]byte, 101)))
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "sess-1-rec-2.wav")); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("expected rejected upload to be removed")
	}
}

func TestSpool_Remove(t *testing.T) {
	spool := NewSpool(t.TempDir(), DefaultLimits())
	rec, _ := spool.Save("sess-1", "a.wav", strings.NewReader("data"))

	if err := spool.Remove(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := spool.Remove(rec); err != nil {
		t.Errorf("expected second remove to be a no-op, got %v", err)
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"visit.mp3":  ".mp3",
		"visit.M4A":  ".m4a",
		"visit":      ".wav",
		"visit.exe":  ".wav",
		"clip.webm":  ".webm",
		"clip.flac":  ".flac",
		"../x/y.ogg": ".ogg",
	}
	for in, want := range tests {
		if got := extension(in); got != want {
			t.Errorf("extension(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIDGenerator_Concurrent(t *testing.T) {
	g := NewIDGenerator()
	seen := sync.Map{}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := g.Next("sess")
			if _, dup := seen.LoadOrStore(id, true); dup {
				t.Errorf("duplicate id %s", id)
			}
		}()
	}
	wg.Wait()
}
