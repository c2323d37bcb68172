// Package apiclient fetches metric snapshots from the dashboard backend.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/telhawk-systems/opsboard/common/middleware"
	"github.com/telhawk-systems/opsboard/internal/models"
)

// Backend endpoints.
const (
	PathOverview  = "/stats/overview"
	PathAnomalies = "/stats/anomalies"
	PathTimeline  = "/stats/timeline"
	PathEvents    = "/events"
)

// maxErrorBody caps how much of a failed response body is kept.
const maxErrorBody = 512

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: unexpected status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client reads snapshots from the backend.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a Client for baseURL. A zero timeout leaves deadlines to the caller's context.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Overview fetches GET /stats/overview.
func (c *Client) Overview(ctx context.Context) (models.WorkflowOverview, error) {
	var out models.WorkflowOverview
	err := c.getJSON(ctx, PathOverview, &out)
	return out, err
}

// Anomalies fetches GET /stats/anomalies.
func (c *Client) Anomalies(ctx context.Context) ([]models.Anomaly, error) {
	var out models.AnomaliesResponse
	if err := c.getJSON(ctx, PathAnomalies, &out); err != nil {
		return nil, err
	}
	if out.Anomalies == nil {
		out.Anomalies = []models.Anomaly{}
	}
	return out.Anomalies, nil
}

// Timeline fetches GET /stats/timeline.
func (c *Client) Timeline(ctx context.Context) ([]models.TimelineEvent, error) {
	var out models.TimelineResponse
	if err := c.getJSON(ctx, PathTimeline, &out); err != nil {
		return nil, err
	}
	if out.Events == nil {
		out.Events = []models.TimelineEvent{}
	}
	return out.Events, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if reqID := middleware.GetRequestID(ctx); reqID != "" {
		req.Header.Set(middleware.RequestIDHeader, reqID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{URL: url, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
