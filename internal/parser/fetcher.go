package parser

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"cpt/internal/domain"
)

const (
	defaultFetchTimeout = 15 * time.Second
	userAgent           = "cpt (competitive programming tester)"
)

// Fetcher downloads problem pages and extracts their sample tests
type Fetcher struct {
	client *http.Client
	parser Parser
	logger *zap.Logger
}

// NewFetcher creates a Fetcher for Codeforces problem pages. client may be nil.
func NewFetcher(client *http.Client, logger *zap.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &Fetcher{
		client: client,
		parser: NewCodeforcesParser(),
		logger: logger,
	}
}

// Fetch downloads rawURL and returns the sample tests found on it
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]domain.TestCase, error) {
	if !IsCodeforcesURL(rawURL) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s: %s", rawURL, resp.Status)
	}

	cases, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", rawURL, err)
	}
	f.logger.Debug("problem fetched",
		zap.String("url", rawURL),
		zap.Int("cases", len(cases)),
		zap.Duration("elapsed", time.Since(start)))
	return cases, nil
}
