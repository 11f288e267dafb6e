package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"oral-health-intake-service/internal/assessment"
	"oral-health-intake-service/internal/models"
)

func storedRecords(n int) []assessment.Record {
	recs := make([]assessment.Record, n)
	for i := range recs {
		recs[i] = assessment.Record{
			ID:                  int64(i + 1),
			DoctorName:          "Dr. Rao",
			Location:            "Clinic A",
			Age:                 "34",
			ChiefComplaint:      "Toothache, lower left",
			SubmissionTimestamp: "2026-10-17T09:30:00.000000",
		}
	}
	return recs
}

type fakePutObject struct {
	bucket, key, body string
	err               error
}

func (f *fakePutObject) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = *in.Bucket
	f.key = *in.Key
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

type capturePublisher struct {
	events []any
}

func (c *capturePublisher) PublishExported(ctx context.Context, key string, event any) error {
	c.events = append(c.events, event)
	return nil
}

func TestExport_NoRecordsWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	pub := &capturePublisher{}

	got, err := New(path, nil, pub).Export(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	_, statErr := os.Stat(path)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "expected no file to be written")
	assert.Empty(t, pub.events)
}

func TestExport_WritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports", "out.csv")
	recs := storedRecords(3)

	got, err := New(path, nil, nil).Export(context.Background(), recs)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, len(recs)+1)
	assert.Equal(t, recs[0].Columns(), rows[0])
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "submission_timestamp", rows[0][len(rows[0])-1])
	assert.Equal(t, recs[2].Values(), rows[3])
	assert.Equal(t, "Toothache, lower left", rows[1][6])
}

func TestExport_OverwritesPreviousFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	exp := New(path, nil, nil)

	_, err := exp.Export(context.Background(), storedRecords(5))
	require.NoError(t, err)
	_, err = exp.Export(context.Background(), storedRecords(1))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestExport_ArchivesAndPublishes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	client := &fakePutObject{}
	archiver := NewS3ArchiverWithClient(client, "intake-exports", "exports/")
	archiver.now = func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC) }
	pub := &capturePublisher{}

	_, err := New(path, archiver, pub).Export(context.Background(), storedRecords(2))
	require.NoError(t, err)

	assert.Equal(t, "intake-exports", client.bucket)
	assert.Equal(t, "exports/oral_health_assessments-20261017T093000Z.csv", client.key)
	assert.True(t, strings.HasPrefix(client.body, "id,doctor_name,location"))

	require.Len(t, pub.events, 1)
	ev := pub.events[0].(models.ExportCompleted)
	assert.Equal(t, 2, ev.Rows)
	assert.Equal(t, client.key, ev.ArchiveKey)
}

func TestExport_ArchiveFailureKeepsLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	archiver := NewS3ArchiverWithClient(&fakePutObject{err: errors.New("AccessDenied")}, "b", "")

	got, err := New(path, archiver, nil).Export(context.Background(), storedRecords(1))
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestWriteCSV_LineCount(t *testing.T) {
	for _, n := range []int{1, 4} {
		var buf bytes.Buffer
		require.NoError(t, WriteCSV(&buf, storedRecords(n)))
		assert.Equal(t, n+1, strings.Count(buf.String(), "\n"))
	}
}

func TestExport_ReadersNeverSeePartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oral_health_assessments.csv")
	e := New(path, nil, nil)
	recs := storedRecords(2000)

	_, err := e.Export(context.Background(), recs)
	require.NoError(t, err)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 0; i < 40; i++ {
			if _, err := e.Export(context.Background(), recs); err != nil {
				t.Errorf("export %d: %v", i, err)
				return
			}
		}
	}()

	reads := 0
	for {
		select {
		case <-done:
			wg.Wait()
			assert.Positive(t, reads)
			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, entries, 1, "temporary export files should not be left behind")
			return
		default:
		}
		data, err := os.ReadFile(path)
		if err != nil {
			wg.Wait()
			t.Fatalf("reading export: %v", err)
		}
		lines := strings.Count(string(data), "\n")
		if lines != len(recs)+1 {
			wg.Wait()
			t.Fatalf("read %d lines, expected %d", lines, len(recs)+1)
		}
		reads++
	}
}
