// internal/services/extraction_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shopdesk/backend/internal/apperrors"
	"github.com/shopdesk/backend/internal/config"
	"github.com/shopdesk/backend/internal/models"
)

// ExtractionResult is the structured order draft the AI service derives from
// a call transcript.
type ExtractionResult struct {
	Items      models.ExtractedItems `json:"items"`
	Summary    string                `json:"summary"`
	Confidence float64               `json:"confidence"`
}

// OrderExtractor turns a raw call transcript into an order draft. The real
// implementation calls the external NLU service; tests and credential-less
// environments use the heuristic mock.
type OrderExtractor interface {
	Extract(ctx context.Context, transcript string) (*ExtractionResult, error)
}

// NewOrderExtractor returns the HTTP client when an endpoint is configured,
// otherwise the local heuristic extractor.
func NewOrderExtractor(cfg *config.Config) OrderExtractor {
	if cfg.AI.ExtractURL != "" {
		return &httpExtractor{
			url:    cfg.AI.ExtractURL,
			apiKey: cfg.AI.APIKey,
			client: &http.Client{
				Timeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
			},
		}
	}

	logrus.Warn("No AI extraction endpoint configured, using heuristic extractor")
	return &heuristicExtractor{}
}

type httpExtractor struct {
	url    string
	apiKey string
	client *http.Client
}

type extractRequest struct {
	Transcript string `json:"transcript"`
}

func (e *httpExtractor) Extract(ctx context.Context, transcript string) (*ExtractionResult, error) {
	payload, err := json.Marshal(extractRequest{Transcript: transcript})
	if err != nil {
		return nil, fmt.Errorf("failed to encode extraction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, apperrors.Dependency("extraction service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.Dependency("failed to read extraction response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Dependency(
			fmt.Sprintf("extraction service returned status %d", resp.StatusCode), nil)
	}

	var result ExtractionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperrors.Dependency("invalid extraction response", err)
	}

	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}

	return &result, nil
}

// heuristicExtractor parses "quantity item-name" patterns straight from the
// transcript. Good enough for development and demos; its confidence scales
// with how much of the transcript it understood.
type heuristicExtractor struct{}

var quantityItemPattern = regexp.MustCompile(`(?i)(\d+)\s+(?:(kg|kgs|liters?|litres?|packets?|bottles?|loaves|loaf|dozen|units?|pieces?|bags?|boxes?)\s+(?:of\s+)?)?([a-z][a-z ]{1,40}?)(?:[,.]|\band\b|$)`)

func (e *heuristicExtractor) Extract(ctx context.Context, transcript string) (*ExtractionResult, error) {
	matches := quantityItemPattern.FindAllStringSubmatch(transcript, -1)

	items := make(models.ExtractedItems, 0, len(matches))
	for _, m := range matches {
		qty, err := strconv.Atoi(m[1])
		if err != nil || qty <= 0 {
			continue
		}
		name := strings.TrimSpace(m[3])
		if name == "" {
			continue
		}
		items = append(items, models.ExtractedItem{
			Name:     name,
			Quantity: qty,
			Unit:     strings.ToLower(m[2]),
		})
	}

	if len(items) == 0 {
		return &ExtractionResult{
			Summary:    "No order items recognized in transcript",
			Confidence: 0,
		}, nil
	}

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = fmt.Sprintf("%d %s", item.Quantity, item.Name)
	}

	// Cheap proxy for extraction quality: the more items the pattern
	// recognized, the more confident we are.
	confidence := 0.5 + 0.1*float64(len(items))
	if confidence > 0.9 {
		confidence = 0.9
	}

	return &ExtractionResult{
		Items:      items,
		Summary:    "Caller requested " + strings.Join(names, ", "),
		Confidence: confidence,
	}, nil
}
