// Package sink writes billing records to the downstream record store.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/rcavanagh/docketbill/internal/log"
	"github.com/rcavanagh/docketbill/internal/model"
)

// Sink creates one downstream record per classified event. Create returns
// the new record's identifier, or an error carrying enough of the response
// to be classified.
type Sink interface {
	Create(ctx context.Context, record model.BillingRecord) (string, error)
}

// HTTPSink posts records to the record store's JSON API with Bearer auth.
// Writes are paced by a rate limiter so a large batch stays under the
// store's request limits; writes remain strictly sequential.
type HTTPSink struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewHTTPSink creates an HTTPSink. requestsPerSecond <= 0 disables pacing.
func NewHTTPSink(baseURL, token string, timeout time.Duration, requestsPerSecond float64, burst int) *HTTPSink {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
	return &HTTPSink{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}
}

type createResponse struct {
	ID string `json:"id"`
}

// Create posts one record. The store's duplicate status (409) is treated as
// "already exists" and reported as success: the store's own duplicate
// prevention is opaque to us and a re-run must not count old records as
// failures.
func (s *HTTPSink) Create(ctx context.Context, record model.BillingRecord) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("create record: %w", err)
		}
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("create record: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/records", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create record: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create record: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("create record: read body: %w", err)
	}

	if resp.StatusCode == http.StatusConflict {
		log.Info("record already exists, treating as success", "date", record.Date.Format("2006-01-02"))
		return "", nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyStr := string(body)
		if len(bodyStr) > 512 {
			bodyStr = bodyStr[:512]
		}
		return "", fmt.Errorf("create record: HTTP %d: %s", resp.StatusCode, bodyStr)
	}

	var created createResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("create record: decode response: %w", err)
	}
	return created.ID, nil
}
