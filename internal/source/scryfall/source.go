package scryfall

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"set_syncer/internal/domain"
)

const (
	SourceID   = "scryfall"
	SourceName = "Scryfall Sets"

	DefaultBaseURL      = "https://api.scryfall.com/sets"
	DefaultUserAgent    = "SetSyncer/1.0"
	DefaultMaxBodyBytes = 64 << 20
)

// Config holds Scryfall source configuration.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
}

// Source fetches the full set list from the Scryfall API.
type Source struct {
	httpClient   *http.Client
	baseURL      string
	userAgent    string
	maxBodyBytes int64
	logger       *slog.Logger
}

// New creates a new Scryfall source.
func New(cfg Config, logger *slog.Logger) *Source {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:      cfg.BaseURL,
		userAgent:    cfg.UserAgent,
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       logger.With("source", SourceID),
	}
}

// ID returns the source identifier.
func (s *Source) ID() string {
	return SourceID
}

// Name returns human-readable name.
func (s *Source) Name() string {
	return SourceName
}

// FetchSets issues a single GET and returns the elements of the envelope's
// data array in order. Every failure is a *domain.TransportError.
func (s *Source) FetchSets(ctx context.Context) ([]domain.RawSet, error) {
	body, err := s.doRequest(ctx)
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(body)
	if err != nil {
		return nil, &domain.TransportError{Op: "decode envelope", Err: err}
	}

	sets := make([]domain.RawSet, 0, len(env.Data))
	for i, elem := range env.Data {
		raw, err := decodeRawSet(elem)
		if err != nil {
			s.logger.Warn("set element is not an object",
				"index", i,
				"error", err,
			)
		}
		sets = append(sets, raw)
	}

	s.logger.Debug("fetched sets",
		"count", len(sets),
		"has_more", env.HasMore,
	)

	return sets, nil
}

func (s *Source) doRequest(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL, nil)
	if err != nil {
		return nil, &domain.TransportError{Op: "create request", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Op: "execute request", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.TransportError{
			Op:         "fetch sets",
			StatusCode: resp.StatusCode,
			Err:        apiError(resp.Body),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodyBytes+1))
	if err != nil {
		return nil, &domain.TransportError{Op: "read body", Err: err}
	}
	if int64(len(body)) > s.maxBodyBytes {
		return nil, &domain.TransportError{
			Op:  "read body",
			Err: fmt.Errorf("response exceeds %d bytes", s.maxBodyBytes),
		}
	}

	return body, nil
}

func decodeEnvelope(body []byte) (*Envelope, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("body is not a JSON object: %w", err)
	}
	if fields == nil {
		return nil, errors.New("body is not a JSON object")
	}

	data, ok := fields["data"]
	if !ok {
		return nil, errors.New(`missing "data" key`)
	}

	env := &Envelope{}
	if err := json.Unmarshal(data, &env.Data); err != nil || env.Data == nil {
		return nil, errors.New(`"data" is not an array`)
	}
	if raw, ok := fields["has_more"]; ok {
		_ = json.Unmarshal(raw, &env.HasMore)
	}

	return env, nil
}

// decodeRawSet keeps numbers as json.Number. Elements that are not objects
// yield an empty payload, which later fails construction as "unknown".
func decodeRawSet(elem json.RawMessage) (domain.RawSet, error) {
	dec := json.NewDecoder(bytes.NewReader(elem))
	dec.UseNumber()

	var raw domain.RawSet
	if err := dec.Decode(&raw); err != nil {
		return domain.RawSet{}, err
	}
	if raw == nil {
		return domain.RawSet{}, errors.New("null element")
	}
	return raw, nil
}

// apiError extracts the details of a Scryfall error object when present.
func apiError(body io.Reader) error {
	var e APIError
	if err := json.NewDecoder(io.LimitReader(body, 1<<16)).Decode(&e); err != nil || e.Details == "" {
		return nil
	}
	return fmt.Errorf("%s: %s", e.Code, e.Details)
}
