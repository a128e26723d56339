// Package caption wraps the external caption-generation webhook. The
// collaborator is opaque: a JSON request goes out, a plain-text caption
// comes back.
package caption

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Request is the webhook's input contract.
type Request struct {
	Platform string `json:"platform"`
	Topic    string `json:"topic"`
}

// Client calls the webhook with a politeness limiter in front, so bursts
// from the UI cannot hammer the shared endpoint.
type Client struct {
	endpoint string
	httpc    *http.Client
	limiter  *rate.Limiter
	log      *zap.Logger
}

// New builds a Client. rps <= 0 disables the limiter; timeout <= 0 falls
// back to 30 seconds.
func New(endpoint string, timeout time.Duration, rps float64, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Client{
		endpoint: endpoint,
		httpc:    &http.Client{Timeout: timeout},
		limiter:  limiter,
		log:      logger.Named("caption"),
	}
}

// Generate requests a caption for the given platform and topic. A non-2xx
// response is a generation failure; the caller surfaces it as retryable.
func (c *Client) Generate(ctx context.Context, platform, topic string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("caption request canceled while throttled: %w", err)
		}
	}

	payload, err := json.Marshal(Request{Platform: platform, Topic: strings.TrimSpace(topic)})
	if err != nil {
		return "", fmt.Errorf("failed to encode caption request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build caption request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("caption webhook unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("caption webhook returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read caption response: %w", err)
	}

	c.log.Debug("Caption generated",
		zap.String("platform", platform),
		zap.Duration("elapsed", time.Since(start)),
	)
	return string(body), nil
}
