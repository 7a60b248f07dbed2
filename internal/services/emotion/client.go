// Package emotion talks to a facial-emotion classification service over HTTP.
//
// The service accepts one still frame per request on POST /detect and answers
// with per-label scores plus the dominant emotion. Device selection travels
// with every request so a shared service can route work to CPU or GPU.
package emotion

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Config describes how to reach the classifier.
type Config struct {
	URL               string
	Device            string
	Timeout           time.Duration
	RequestsPerSecond float64
}

// Score is one label's confidence.
type Score struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classification is the classifier's answer for one frame.
type Classification struct {
	Emotions        []Score `json:"emotions"`
	DominantEmotion string  `json:"dominant_emotion"`
}

// Dominant returns the lower-cased dominant label and its score. Without an
// explicit dominant label the highest score wins.
func (c Classification) Dominant() (string, float64) {
	label := strings.ToLower(strings.TrimSpace(c.DominantEmotion))
	if label != "" {
		for _, s := range c.Emotions {
			if strings.EqualFold(s.Label, label) {
				return label, s.Score
			}
		}
		return label, 0
	}
	best := -1.0
	for _, s := range c.Emotions {
		if s.Score > best {
			best = s.Score
			label = strings.ToLower(strings.TrimSpace(s.Label))
		}
	}
	if best < 0 {
		best = 0
	}
	return label, best
}

type detectRequest struct {
	Image  string `json:"image"`
	Device string `json:"device,omitempty"`
}

// Client calls the classifier, rate limited across goroutines.
type Client struct {
	endpoint string
	device   string
	http     *http.Client
	limiter  *rate.Limiter
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("emotion: invalid service url %q", cfg.URL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &Client{
		endpoint: base + "/detect",
		device:   strings.TrimSpace(cfg.Device),
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, burst),
	}, nil
}

// WithHTTPClient overrides the transport (for testing).
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	if client != nil {
		c.http = client
	}
	return c
}

// ClassifyFile reads an encoded image from disk and classifies it.
func (c *Client) ClassifyFile(ctx context.Context, path string) (Classification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Classification{}, fmt.Errorf("emotion: read frame: %w", err)
	}
	return c.Classify(ctx, data)
}

// Classify sends one encoded image to the service.
func (c *Client) Classify(ctx context.Context, image []byte) (Classification, error) {
	if len(image) == 0 {
		return Classification{}, errors.New("emotion: empty image")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return Classification{}, err
	}

	body, err := json.Marshal(detectRequest{Image: base64.StdEncoding.EncodeToString(image), Device: c.device})
	if err != nil {
		return Classification{}, fmt.Errorf("emotion encode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Classification{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Classification{}, fmt.Errorf("emotion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Classification{}, fmt.Errorf("emotion %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	var out Classification
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Classification{}, fmt.Errorf("emotion decode: %w", err)
	}
	return out, nil
}
