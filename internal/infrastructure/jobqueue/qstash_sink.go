// Package jobqueue hands crawl output to downstream consumers through the
// Upstash QStash publish API.
package jobqueue

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/market-value-crawler/internal/domain/ranking"
	"github.com/riskibarqy/market-value-crawler/internal/platform/logging"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type QStashSinkConfig struct {
	BaseURL   string
	Token     string
	TargetURL string
	Retries   int
	Timeout   time.Duration
}

// QStashSink publishes one crawl's ranked rows as a single JSON message that
// QStash forwards to TargetURL.
type QStashSink struct {
	client    *http.Client
	baseURL   string
	token     string
	targetURL string
	retries   int
	logger    *logging.Logger
}

type crawlMessage struct {
	PublishedAt time.Time              `json:"published_at"`
	Count       int                    `json:"count"`
	Players     []ranking.RankedPlayer `json:"players"`
}

func NewQStashSink(cfg QStashSinkConfig, httpClient *http.Client, logger *logging.Logger) (*QStashSink, error) {
	if logger == nil {
		logger = logging.Default()
	}
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid qstash base url: %w", err)
	}
	targetURL, err := validateHTTPBaseURL(cfg.TargetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid qstash target url: %w", err)
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, fmt.Errorf("qstash token is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := *httpClient
	client.Timeout = timeout

	return &QStashSink{
		client:    &client,
		baseURL:   baseURL,
		token:     strings.TrimSpace(cfg.Token),
		targetURL: targetURL,
		retries:   cfg.Retries,
		logger:    logger,
	}, nil
}

func (s *QStashSink) Name() string {
	return "qstash:" + s.targetURL
}

func (s *QStashSink) Write(ctx context.Context, players []ranking.RankedPlayer) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	err := sonic.ConfigDefault.NewEncoder(buf).Encode(crawlMessage{
		PublishedAt: time.Now().UTC(),
		Count:       len(players),
		Players:     players,
	})
	if err != nil {
		return fmt.Errorf("encode crawl message: %w", err)
	}

	publishURL := s.baseURL + "/v2/publish/" + s.targetURL
	dedupID := deduplicationID(players)

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.target_url", s.targetURL),
			attribute.Int("qstash.body_bytes", buf.Len()),
			attribute.String("qstash.deduplication_id", dedupID),
		)
	}

	// the pooled buffer is recycled on return, so the body gets its own copy
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, strings.NewReader(buf.String()))
	if err != nil {
		return fmt.Errorf("create qstash request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Upstash-Method", http.MethodPost)
	req.Header.Set("Upstash-Deduplication-Id", dedupID)
	if s.retries > 0 {
		req.Header.Set("Upstash-Retries", strconv.Itoa(s.retries))
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("publish crawl message to %s: %w", s.targetURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("publish crawl message status=%d target_url=%s body=%s",
			resp.StatusCode, s.targetURL, strings.TrimSpace(string(raw)))
	}

	s.logger.InfoContext(ctx, "crawl message published",
		"target_url", s.targetURL,
		"players", len(players),
		"bytes", buf.Len(),
		"deduplication_id", dedupID,
	)
	return nil
}

// deduplicationID is stable for identical result sets so a retried crawl
// that produced the same rows is not delivered twice.
func deduplicationID(players []ranking.RankedPlayer) string {
	h := fnv.New64a()
	for _, p := range players {
		_, _ = io.WriteString(h, p.PlayerID)
		_, _ = io.WriteString(h, "|")
		_, _ = io.WriteString(h, p.MarketValue)
		_, _ = io.WriteString(h, "\n")
	}
	return "crawl-" + strconv.FormatUint(h.Sum64(), 16)
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", fmt.Errorf("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", candidate, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", fmt.Errorf("%q has empty host", candidate)
	}
	return strings.TrimRight(candidate, "/"), nil
}
