package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/devinfinitee/AI-health-companion/pkg/config"
)

// Generator produces a text reply for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var ErrNotConfigured = errors.New("generative text service not configured")

// GeminiClient calls the Gemini generateContent REST endpoint.
type GeminiClient struct {
	http    *http.Client
	baseURL string
	model   string
	apiKey  string
}

func NewGeminiClient(cfg config.CompanionConfig) *GeminiClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &GeminiClient{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		apiKey:  cfg.APIKey,
	}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents          []content `json:"contents"`
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

const systemPrompt = "You are a health companion. Give general, cautious guidance about the " +
	"symptoms described, suggest which hospital department fits, and advise seeing a " +
	"clinician for diagnosis. Never claim to diagnose."

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	body, err := json.Marshal(generateRequest{
		Contents:          []content{{Role: "user", Parts: []part{{Text: prompt}}}},
		SystemInstruction: &content{Parts: []part{{Text: systemPrompt}}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	// The key stays out of the URL so transport errors never quote it.
	req.Header.Set("x-goog-api-key", c.apiKey)

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("gemini read: %w", err)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("gemini decode: status=%d: %w", res.StatusCode, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		if out.Error != nil {
			return "", fmt.Errorf("gemini error: status=%d message=%s", res.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("gemini error: status=%d", res.StatusCode)
	}

	var sb strings.Builder
	for _, cand := range out.Candidates {
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	reply := strings.TrimSpace(sb.String())
	if reply == "" {
		return "", errors.New("gemini returned no text")
	}
	return reply, nil
}

var _ Generator = (*GeminiClient)(nil)
