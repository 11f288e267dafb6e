// Package huggingface answers questions through the Hugging Face Inference API
// question-answering task.
package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"oral-health-intake-service/internal/service/qa"
)

const (
	DefaultBaseURL = "https://api-inference.huggingface.co"
	DefaultModel   = "distilbert-base-cased-distilled-squad"
)

// Client calls POST {base}/models/{model} with a bearer token.
type Client struct {
	baseURL string
	model   string
	token   string
	hc      *http.Client
}

// New creates a client. Empty baseURL and model select the public defaults.
func New(baseURL, model, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		token:   token,
		hc:      &http.Client{},
	}
}

func (c *Client) Name() string {
	return "huggingface"
}

type qaInputs struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type qaRequest struct {
	Inputs qaInputs `json:"inputs"`
}

type qaResponse struct {
	Answer string  `json:"answer"`
	Score  float64 `json:"score"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) Answer(ctx context.Context, question, passage string) (qa.Span, error) {
	payload, err := json.Marshal(qaRequest{Inputs: qaInputs{Question: question, Context: passage}})
	if err != nil {
		return qa.Span{}, err
	}

	url := fmt.Sprintf("%s/models/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return qa.Span{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return qa.Span{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		var er errorResponse
		if json.Unmarshal(b, &er) == nil && er.Error != "" {
			return qa.Span{}, fmt.Errorf("huggingface http %d: %s", resp.StatusCode, er.Error)
		}
		return qa.Span{}, fmt.Errorf("huggingface http %d: %s", resp.StatusCode, string(b))
	}

	var qr qaResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return qa.Span{}, fmt.Errorf("huggingface unexpected response: %w", err)
	}
	return qa.Span{Text: qr.Answer, Score: qr.Score}, nil
}
