package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"fibertrace/internal/app/client/config"
	"fibertrace/internal/domain/sync"
	"fibertrace/internal/model"
)

// ErrTransport marks failures to reach the server at all, as opposed
// to the server answering with an error. The sync engine treats
// transport failures as "offline" and leaves local state untouched.
var ErrTransport = errors.New("server unreachable")

type httpClient struct {
	client    *http.Client
	config    *config.Config
	log       *slog.Logger
	baseURL   string
	userAgent string
}

func NewHTTPClient(cfg *config.Config, log *slog.Logger) (*httpClient, error) {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	return &httpClient{
		client:    client,
		config:    cfg,
		log:       log,
		baseURL:   "http://" + cfg.ServerAddress,
		userAgent: "FiberTrace-Client/1.0",
	}, nil
}

// HealthCheck probes server availability. Used by the connectivity
// oracle; a short timeout keeps offline probes from stalling the CLI.
func (h *httpClient) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", h.baseURL+"/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned status: %d", resp.StatusCode)
	}

	return nil
}

// PushRecords uploads unsynced records for one collection.
func (h *httpClient) PushRecords(ctx context.Context, req sync.PushRequest) (*sync.PushResponse, error) {
	resp, err := h.doRequest(ctx, "POST", "/api/v1/sync/push", req)
	if err != nil {
		return nil, err
	}

	var result sync.PushResponse
	if err := h.parseResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// PullChanges fetches records changed since the given watermark. A
// zero time asks for the full collection.
func (h *httpClient) PullChanges(ctx context.Context, collection model.Collection, since time.Time) (*sync.ChangesResponse, error) {
	q := url.Values{}
	q.Set("collection", string(collection))
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339Nano))
	}

	resp, err := h.doRequest(ctx, "GET", "/api/v1/sync/changes?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var result sync.ChangesResponse
	if err := h.parseResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

func (h *httpClient) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", h.userAgent)
	req.Header.Set("X-Device-ID", h.config.DeviceID)
	if h.config.TechnicianAuth != "" {
		req.Header.Set("Authorization", "Bearer "+h.config.TechnicianAuth)
	}

	h.log.Debug("sending request",
		"method", method,
		"url", req.URL.String(),
	)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	return resp, nil
}

func (h *httpClient) parseResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	h.log.Debug("received response",
		"status", resp.StatusCode,
	)

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error  string `json:"error"`
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(body, &errResp); err == nil {
			if errResp.Error != "" {
				return fmt.Errorf("server error: %s", errResp.Error)
			}
			if errResp.Detail != "" {
				return fmt.Errorf("server error: %s", errResp.Detail)
			}
		}
		return fmt.Errorf("server error: status %d", resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
