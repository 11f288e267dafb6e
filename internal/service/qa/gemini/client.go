// Package gemini answers questions with a Gemini generateContent call and an
// extractive prompt.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"oral-health-intake-service/internal/service/qa"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-1.5-flash"
)

const promptTemplate = `Answer the question using only words copied from the clinical note below.
Reply with the shortest span that answers it and nothing else.
If the note does not contain the answer, reply with an empty line.

Clinical note:
%s

Question: %s`

type Request struct {
	Contents []Content `json:"contents"`
}

type Content struct {
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text"`
}

type Response struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Client calls {base}/models/{model}:generateContent with the key in the
// x-goog-api-key header.
type Client struct {
	baseURL string
	model   string
	apiKey  string
	hc      *http.Client
}

func New(baseURL, model, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		hc:      &http.Client{},
	}
}

func (c *Client) Name() string {
	return "gemini"
}

func (c *Client) Answer(ctx context.Context, question, passage string) (qa.Span, error) {
	body, err := json.Marshal(Request{
		Contents: []Content{{Parts: []Part{{Text: fmt.Sprintf(promptTemplate, passage, question)}}}},
	})
	if err != nil {
		return qa.Span{}, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return qa.Span{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	// The key stays out of the URL so transport errors never carry it.
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return qa.Span{}, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return qa.Span{}, err
	}

	var gr Response
	if err := json.Unmarshal(b, &gr); err != nil {
		if resp.StatusCode >= 300 {
			return qa.Span{}, fmt.Errorf("gemini http %d: %s", resp.StatusCode, string(b))
		}
		return qa.Span{}, fmt.Errorf("gemini unexpected response: %w", err)
	}
	if gr.Error != nil {
		return qa.Span{}, fmt.Errorf("gemini http %d: %s", resp.StatusCode, gr.Error.Message)
	}
	if resp.StatusCode >= 300 {
		return qa.Span{}, fmt.Errorf("gemini http %d: %s", resp.StatusCode, string(b))
	}

	return qa.Span{Text: firstText(gr)}, nil
}

func firstText(gr Response) string {
	if len(gr.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range gr.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String())
}
