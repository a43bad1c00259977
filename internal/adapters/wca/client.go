package wca

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hylla/nametag/internal/app"
	"github.com/hylla/nametag/internal/wcif"
)

// DefaultBaseURL and related constants define client defaults.
const (
	DefaultBaseURL   = "https://www.worldcubeassociation.org"
	DefaultExportURL = "https://www.worldcubeassociation.org/export/results/WCA_export.tsv.zip"
	DefaultUserAgent = "nametag"
	defaultTimeout   = 30 * time.Second
	errorBodyLimit   = 512
)

// ErrUnexpectedStatus reports a non-2xx API response.
var ErrUnexpectedStatus = errors.New("unexpected status")

// ClientConfig holds configuration for client.
type ClientConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	UserAgent         string
}

// Client talks to the public WCA API and export endpoints.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
}

// NewClient constructs a client; httpClient may be nil.
func NewClient(cfg ClientConfig, httpClient *http.Client) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{
		baseURL:   base,
		userAgent: userAgent,
		http:      httpClient,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// CompetitionURL returns the public WCIF endpoint for a competition.
func (c *Client) CompetitionURL(competitionID string) string {
	return fmt.Sprintf("%s/api/v0/competitions/%s/wcif/public", c.baseURL, url.PathEscape(competitionID))
}

// FetchCompetition downloads and decodes the public WCIF document.
func (c *Client) FetchCompetition(ctx context.Context, competitionID string) (wcif.Competition, error) {
	resp, err := c.get(ctx, c.CompetitionURL(competitionID))
	if err != nil {
		return wcif.Competition{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return wcif.Competition{}, fmt.Errorf("%w: competition %q", app.ErrNotFound, competitionID)
	}
	if err := checkStatus(resp); err != nil {
		return wcif.Competition{}, err
	}
	comp, err := wcif.Decode(resp.Body)
	if err != nil {
		return wcif.Competition{}, err
	}
	return comp, nil
}

func (c *Client) get(ctx context.Context, target string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target, err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	return fmt.Errorf("%w: %s from %s: %s", ErrUnexpectedStatus, resp.Status, resp.Request.URL.Redacted(), strings.TrimSpace(string(body)))
}
