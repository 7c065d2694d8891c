// HTTP clients for the echo services and the negative-image proxy
package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ds124wfegd/negative-web/config"
	"github.com/ds124wfegd/negative-web/internal/entity"
)

type Client struct {
	http    *http.Client
	baseURL string
	paths   map[entity.Endpoint]string
	probes  map[entity.Endpoint]string
	negPath string
	maxBody int64
}

func NewClient(cfg config.BackendConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		paths: map[entity.Endpoint]string{
			entity.Service1: cfg.Service1Path,
			entity.Service2: cfg.Service2Path,
		},
		probes: map[entity.Endpoint]string{
			entity.Service1: cfg.Service1Probe,
			entity.Service2: cfg.Service2Probe,
		},
		negPath: cfg.NegativePath,
		maxBody: cfg.MaxResponseSize,
	}
}

func (c *Client) url(path string) string {
	return c.baseURL + path
}

// ProbeResult is the outcome of one backend health check.
type ProbeResult struct {
	Endpoint entity.Endpoint `json:"endpoint"`
	Healthy  bool            `json:"healthy"`
	Status   int             `json:"status,omitempty"`
	Latency  time.Duration   `json:"latency"`
	Error    string          `json:"error,omitempty"`
}

// Probe hits the health path of endpoint and expects 200.
func (c *Client) Probe(ctx context.Context, endpoint entity.Endpoint) ProbeResult {
	result := ProbeResult{Endpoint: endpoint}
	path, ok := c.probes[endpoint]
	if !ok {
		result.Error = entity.ErrUnknownEndpoint.Error()
		return result
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	resp, err := c.http.Do(req)
	result.Latency = time.Since(start)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()

	result.Status = resp.StatusCode
	result.Healthy = resp.StatusCode == http.StatusOK
	if !result.Healthy {
		result.Error = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}
	return result
}
