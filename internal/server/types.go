package server

import (
	"context"

	"github.com/doclens/doclens/internal/flatten"
	"github.com/doclens/doclens/internal/locator"
	"github.com/doclens/doclens/internal/match"
)

// pageLocator defines the term-location methods the server needs.
type pageLocator interface {
	PageCount(ctx context.Context, documentID string) (int, error)
	Locate(ctx context.Context, documentID string, page int, terms match.TermSet) (*locator.PageResult, error)
}

// printPipeline defines the print flattening methods the server needs.
type printPipeline interface {
	Flatten(ctx context.Context, documentID string, terms match.TermSet) (*flatten.Result, error)
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	locator     pageLocator
	printer     printPipeline
	corsOrigin  string
	batchSize   int
	rateLimiter *RateLimiter
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
}

// Config holds server configuration.
type Config struct {
	Host          string
	Port          int
	CORSOrigin    string
	TimeoutSec    int
	ScanBatchSize int
	RateLimit     RateLimitConfig
}

// Request payloads.

// TermsRequest carries the term lists shared by all lookup endpoints.
type TermsRequest struct {
	DocumentID string   `json:"document_id"`
	Hits       []string `json:"hits"`
	Context    []string `json:"context"`
	Strict     bool     `json:"strict"`
}

// TermSet builds the request's TermSet, enforcing hit/context disjointness.
func (r TermsRequest) TermSet() match.TermSet {
	ts := match.NewTermSet(r.Hits, r.Context)
	ts.Strict = r.Strict
	return ts
}

// LocateRequest asks for term locations on one page.
type LocateRequest struct {
	TermsRequest
	Page int `json:"page"`
}

// Response types for API endpoints.

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

type LocateResponse struct {
	Success bool                `json:"success"`
	Result  *locator.PageResult `json:"result,omitempty"`
	Error   string              `json:"error,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// NewServer creates a server around the given engine components.
func NewServer(config Config, loc pageLocator, printer printPipeline) *Server {
	s := &Server{
		locator:    loc,
		printer:    printer,
		corsOrigin: config.CORSOrigin,
		batchSize:  config.ScanBatchSize,
	}
	if config.RateLimit.Enabled {
		s.rateLimiter = NewRateLimiter(
			config.RateLimit.RequestsPerMinute,
			config.RateLimit.RequestsPerHour,
			config.RateLimit.MaxRequestsPerDay,
		)
	}
	return s
}
