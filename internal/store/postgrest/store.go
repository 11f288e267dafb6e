// Package postgrest keeps assessments in a Supabase project through its
// PostgREST endpoint, authenticated with the project URL and key.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"oral-health-intake-service/internal/assessment"
	"oral-health-intake-service/internal/store"
)

type Store struct {
	baseURL string
	key     string
	hc      *http.Client
}

func New(baseURL, key string) *Store {
	return &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		hc:      &http.Client{},
	}
}

func (s *Store) tableURL() string {
	return s.baseURL + "/rest/v1/" + assessment.TableName
}

func (s *Store) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", s.key)
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (s *Store) do(req *http.Request, out interface{}) error {
	resp, err := s.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("postgrest http %d: %s", resp.StatusCode, string(b))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("postgrest unexpected response: %w", err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, rec *assessment.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	req, err := s.newRequest(ctx, http.MethodPost, s.tableURL(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "return=representation")

	var inserted []assessment.Record
	if err := s.do(req, &inserted); err != nil {
		return fmt.Errorf("inserting assessment: %w", err)
	}
	if len(inserted) > 0 {
		rec.ID = inserted[0].ID
	}
	return nil
}

func (s *Store) FetchAll(ctx context.Context) ([]assessment.Record, error) {
	req, err := s.newRequest(ctx, http.MethodGet, s.tableURL()+"?select=*", nil)
	if err != nil {
		return nil, err
	}

	var recs []assessment.Record
	if err := s.do(req, &recs); err != nil {
		return nil, fmt.Errorf("fetching assessments: %w", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs, nil
}

func (s *Store) Ping(ctx context.Context) error {
	req, err := s.newRequest(ctx, http.MethodGet, s.tableURL()+"?select=id&limit=1", nil)
	if err != nil {
		return err
	}
	return s.do(req, nil)
}

func (s *Store) Close() error {
	s.hc.CloseIdleConnections()
	return nil
}

var _ store.Store = (*Store)(nil)
