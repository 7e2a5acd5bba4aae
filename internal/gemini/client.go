// Package gemini implements the text-to-entry parser on top of the Gemini
// generateContent REST API. One call parses one free-text clause into an
// amount, a proposed category label and a short description.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chitieu/internal/core"
)

var ErrUnparseableResponse = errors.New("unparseable model response")

type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
}

// NewClient builds a parser client. baseURL points at the Gemini API host
// and is overridable for tests. The HTTP client carries no retry policy and
// no request timeout of its own: a failed clause fails the whole submission
// and the caller decides how long to wait.
func NewClient(baseURL, model, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
	}
}

type (
	generateRequest struct {
		Contents         []content       `json:"contents"`
		GenerationConfig *generationConf `json:"generationConfig,omitempty"`
	}

	content struct {
		Parts []part `json:"parts"`
	}

	part struct {
		Text string `json:"text"`
	}

	generationConf struct {
		ResponseMimeType string          `json:"responseMimeType,omitempty"`
		ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
	}

	generateResponse struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
	}

	parsedPayload struct {
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
	}
)

// responseSchema constrains the model to the three fields we extract.
var responseSchema = json.RawMessage(`{
	"type": "OBJECT",
	"properties": {
		"amount": {"type": "NUMBER", "description": "Số tiền chi tiêu (số nguyên)."},
		"category": {"type": "STRING", "description": "Phân loại chi tiêu."},
		"description": {"type": "STRING", "description": "Mô tả ngắn gọn chi tiêu."}
	},
	"required": ["amount", "category", "description"]
}`)

func prompt(clause string) string {
	labels := make([]string, 0, 4)
	for _, c := range core.Categories() {
		labels = append(labels, `"`+c.Label()+`"`)
	}
	return fmt.Sprintf(`Hãy phân tích câu sau đây để lấy thông tin chi tiêu: "%s".
Các loại chi tiêu hợp lệ là: %s.

QUY TẮC ĐẶC BIỆT:
- Nếu nội dung có chứa từ "cafe" hoặc "ăn phố", bạn PHẢI xếp vào loại "%s".
- Nếu không rõ, hãy xếp vào "%s".

Hãy chuyển đơn vị tiền tệ sang số nguyên (ví dụ: 30k -> 30000).`,
		clause, strings.Join(labels, ", "), core.CategoryHangOut.Label(), core.CategoryOther.Label())
}

// ParseClause asks the model to extract spending fields from one clause.
// A missing amount defaults to 0 and a missing description falls back to
// the raw clause; anything the model returns for category is only a
// proposal, the override rule in core decides the final value.
func (c *Client) ParseClause(ctx context.Context, clause string) (core.ParsedClause, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt(clause)}}}},
		GenerationConfig: &generationConf{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema,
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return core.ParsedClause{}, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return core.ParsedClause{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.ParsedClause{}, fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return core.ParsedClause{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return core.ParsedClause{}, fmt.Errorf("model returned status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return core.ParsedClause{}, fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		return core.ParsedClause{}, fmt.Errorf("%w: no candidates", ErrUnparseableResponse)
	}

	var payload parsedPayload
	text := gr.Candidates[0].Content.Parts[0].Text
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return core.ParsedClause{}, fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
	}
	if payload.Amount < 0 {
		return core.ParsedClause{}, fmt.Errorf("%w: negative amount %v", ErrUnparseableResponse, payload.Amount)
	}

	parsed := core.ParsedClause{
		Amount:      int64(math.Round(payload.Amount)),
		Category:    payload.Category,
		Description: payload.Description,
	}
	if strings.TrimSpace(parsed.Description) == "" {
		parsed.Description = clause
	}

	slog.DebugContext(ctx, "Clause parsed",
		"clause", clause,
		"amount", parsed.Amount,
		"category", parsed.Category,
		"duration_ms", time.Since(start).Milliseconds())

	return parsed, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
