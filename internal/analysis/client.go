package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/hugh/appsec-portal/internal/models"
	"github.com/hugh/appsec-portal/internal/reporting"
)

// Client talks to the document-analysis HTTP API. It is stateless; a new
// request is issued per call and transient failures are retried with
// exponential backoff before the caller's degraded path kicks in.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type documentRequest struct {
	MimeType string `json:"mimeType"`
	// Data is base64-encoded by encoding/json.
	Data []byte `json:"data"`
}

func (c *Client) ExtractFindings(ctx context.Context, file []byte, mimeType string) ([]RawFinding, error) {
	var findings []RawFinding
	err := c.post(ctx, "/v1/reports/findings", documentRequest{MimeType: mimeType, Data: file}, &findings)
	if err != nil {
		return nil, fmt.Errorf("extracting findings: %w", err)
	}
	return findings, nil
}

func (c *Client) ExtractRetestVerdicts(ctx context.Context, file []byte, mimeType string) ([]RetestVerdict, error) {
	var verdicts []RetestVerdict
	err := c.post(ctx, "/v1/reports/retest", documentRequest{MimeType: mimeType, Data: file}, &verdicts)
	if err != nil {
		return nil, fmt.Errorf("extracting retest verdicts: %w", err)
	}
	return verdicts, nil
}

func (c *Client) SummarizeDiscussion(ctx context.Context, messages []models.ChatMessage) string {
	if len(messages) == 0 {
		return NoMessagesSummary
	}
	var out struct {
		Summary string `json:"summary"`
	}
	req := struct {
		Messages []models.ChatMessage `json:"messages"`
	}{Messages: messages}
	if err := c.post(ctx, "/v1/discussions/summary", req, &out); err != nil {
		c.logger.Warn("discussion summary unavailable", "error", err)
		return SummaryUnavailable
	}
	if out.Summary == "" {
		return SummaryUnavailable
	}
	return out.Summary
}

func (c *Client) AnalyzeRisk(ctx context.Context, t models.Ticket) RiskAssessment {
	var out RiskAssessment
	req := struct {
		AppName       string                `json:"appName"`
		Type          models.AssessmentType `json:"type"`
		TestURL       string                `json:"testUrl"`
		Questionnaire models.Questionnaire  `json:"questionnaire"`
	}{t.AppName, t.Type, t.TestURL, t.Details.Questionnaire}
	if err := c.post(ctx, "/v1/risk", req, &out); err != nil {
		c.logger.Warn("risk analysis unavailable", "app", t.AppName, "error", err)
		return RiskAssessment{Summary: RiskUnavailable, RecommendedTier: models.TierMedium}
	}
	return out
}

func (c *Client) ExecutiveSummary(ctx context.Context, stats reporting.Stats) string {
	var out struct {
		Summary string `json:"summary"`
	}
	if err := c.post(ctx, "/v1/executive-summary", stats, &out); err != nil {
		c.logger.Warn("executive summary unavailable", "error", err)
		return ExecUnavailable
	}
	if out.Summary == "" {
		return ExecUnavailable
	}
	return out.Summary
}

// post sends one JSON request and decodes the JSON response, retrying
// transient failures (network errors and 5xx) with exponential backoff.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 30 * time.Second

	var respBody []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("analysis service returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("analysis service returned %d", resp.StatusCode))
		}

		respBody, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
