// Package plantid calls the Plant.id identification API.
package plantid

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/agromart/backend/internal/domain/shared"
	"github.com/agromart/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// ErrNotConfigured is returned when no Plant.id API key is set
var ErrNotConfigured = shared.NewDomainError(shared.ErrUnavailable.Code, "Plant identification provider is not configured")

// ErrNoImages is returned when Identify is called without images
var ErrNoImages = errors.New("at least one image is required")

// Suggestion is a candidate species for the submitted images
type Suggestion struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
}

// Identifier identifies plants from photos
type Identifier interface {
	Identify(ctx context.Context, images [][]byte) ([]Suggestion, error)
}

// Client is a Plant.id v3 API client
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Identifier = (*Client)(nil)

// NewClient creates a client. An empty API key is accepted; Identify then
// fails with ErrNotConfigured.
func NewClient(cfg config.PlantIDConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Configured reports whether an API key is set
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type identifyRequest struct {
	Images []string `json:"images"`
}

type identifyResponse struct {
	Result struct {
		Classification struct {
			Suggestions []Suggestion `json:"suggestions"`
		} `json:"classification"`
	} `json:"result"`
}

// Identify posts the images and returns the suggestions in the order the
// provider ranks them.
func (c *Client) Identify(ctx context.Context, images [][]byte) ([]Suggestion, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	req := identifyRequest{Images: make([]string, 0, len(images))}
	for _, img := range images {
		req.Images = append(req.Images, dataURI(img))
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode identification request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/identification", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build identification request: %w", err)
	}
	httpReq.Header.Set("Api-Key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("plant.id request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read plant.id response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		c.logger.Warn("Plant.id request rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(payload), 256)),
		)
		return nil, fmt.Errorf("plant.id returned status %d", resp.StatusCode)
	}

	var out identifyResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("failed to decode plant.id response: %w", err)
	}
	suggestions := out.Result.Classification.Suggestions
	if suggestions == nil {
		suggestions = []Suggestion{}
	}
	return suggestions, nil
}

// dataURI accepts raw bytes or an already encoded base64 / data URI string
func dataURI(img []byte) string {
	s := string(img)
	if strings.HasPrefix(s, "data:") {
		return s
	}
	return "data:" + http.DetectContentType(img) + ";base64," + base64.StdEncoding.EncodeToString(img)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
