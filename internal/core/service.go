package core

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"

	"github.com/JonMunkholm/csvtable/internal/logging"
	"github.com/google/uuid"
)

// Source opens the raw CSV content of the configured object.
type Source interface {
	// Open returns the object body. Failures are *SourceError values whose
	// kind is ErrNotFound, ErrAccessDenied, ErrTransient or ErrEmptyObject.
	Open(ctx context.Context) (io.ReadCloser, error)

	// Describe names the object for logs, e.g. "s3://bucket/key".
	Describe() string
}

// FetchStatus is the outcome of one fetch.
type FetchStatus string

const (
	FetchOK     FetchStatus = "ok"
	FetchFailed FetchStatus = "failed"
)

// FetchRecord describes one fetch for the history log.
type FetchRecord struct {
	ID        string        `json:"id"`
	Source    string        `json:"source"`
	Status    FetchStatus   `json:"status"`
	Code      string        `json:"code,omitempty"`
	Rows      int           `json:"rows"`
	Bytes     int64         `json:"bytes"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
	ClientIP  string        `json:"clientIp,omitempty"`
	UserAgent string        `json:"userAgent,omitempty"`
	StartedAt time.Time     `json:"startedAt"`
}

// FetchRecorder persists fetch outcomes.
type FetchRecorder interface {
	RecordFetch(ctx context.Context, rec FetchRecord) error
}

type nopRecorder struct{}

func (nopRecorder) RecordFetch(context.Context, FetchRecord) error { return nil }

// FetchResult is a decoded object.
type FetchResult struct {
	ID       string
	Records  []Record
	Bytes    int64
	Duration time.Duration
}

// Service runs the fetch-and-decode pipeline. It holds no Records between
// calls: every FetchTable reads the object again.
type Service struct {
	source   Source
	limiter  *FetchLimiter
	recorder FetchRecorder
}

// Option configures a Service.
type Option func(*Service)

// WithLimiter bounds concurrent fetches.
func WithLimiter(l *FetchLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithRecorder records each fetch outcome.
func WithRecorder(r FetchRecorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewService creates a Service reading from src.
func NewService(src Source, opts ...Option) *Service {
	s := &Service{
		source:   src,
		limiter:  NewFetchLimiter(DefaultMaxConcurrentFetches, DefaultMaxWaitTime),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limiter returns the fetch limiter, for status reporting and shutdown.
func (s *Service) Limiter() *FetchLimiter {
	return s.limiter
}

// FetchTable fetches the configured object once and decodes it.
//
// An object with no content fails with ErrEmptyObject without being decoded.
// Source failures keep their kind; decode failures are *DecodeError.
func (s *Service) FetchTable(ctx context.Context) (*FetchResult, error) {
	id := uuid.NewString()
	start := time.Now()
	logger := logging.WithFields(ctx, "fetch_id", id, "source", s.source.Describe())

	if err := s.limiter.Acquire(ctx); err != nil {
		logger.Warn("fetch slot unavailable", "error", err)
		return nil, err
	}
	defer s.limiter.Release()

	records, n, err := s.fetch(ctx)
	client := ClientFromContext(ctx)

	rec := FetchRecord{
		ID:        id,
		Source:    s.source.Describe(),
		Status:    FetchOK,
		Rows:      len(records),
		Bytes:     n,
		Duration:  time.Since(start),
		ClientIP:  client.IP,
		UserAgent: client.UserAgent,
		StartedAt: start,
	}
	if err != nil {
		rec.Status = FetchFailed
		rec.Code = MapError(err).Code
		rec.Error = err.Error()
	}
	if rerr := s.recorder.RecordFetch(ctx, rec); rerr != nil {
		logger.Warn("failed to record fetch", "error", rerr)
	}

	if err != nil {
		logger.Error("fetch failed", "error", err, "code", rec.Code, "duration_ms", rec.Duration.Milliseconds())
		return nil, err
	}

	logger.Info("fetch completed",
		"rows", rec.Rows,
		"bytes", rec.Bytes,
		"duration_ms", rec.Duration.Milliseconds(),
	)

	return &FetchResult{
		ID:       id,
		Records:  records,
		Bytes:    n,
		Duration: rec.Duration,
	}, nil
}

func (s *Service) fetch(ctx context.Context) ([]Record, int64, error) {
	body, err := s.source.Open(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer body.Close()

	counter := newCountingReader(body)
	br := bufio.NewReader(counter)

	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, &SourceError{Kind: ErrEmptyObject}
		}
		return nil, counter.BytesRead(), &DecodeError{Err: err}
	}

	records, err := Decode(br)
	return records, counter.BytesRead(), err
}
