package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jsamuelsen/quotebook/internal/adapters/clients"
	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

// Default request paths on a remote library.
const (
	DefaultCollectionPath = "/collections/%s"
	DefaultHealthPath     = "/health"
)

// LibraryConfig configures a Library.
type LibraryConfig struct {
	// Client reaches the library. Required.
	Client *clients.Client

	// CollectionPath is a format string with one %s for the escaped ref.
	CollectionPath string

	// HealthPath is probed by Check.
	HealthPath string

	Logger *slog.Logger
}

// Library implements ports.DocumentSource against a remote quote library.
//
// A collection document may be a bare array of quotes, an object wrapping
// the array in "results" or "quotes", or a single quote object. Quotes may
// use either this program's field names or the quotable-style ones
// (_id, content, dateAdded, dateModified).
type Library struct {
	client         *clients.Client
	collectionPath string
	healthPath     string
	logger         *slog.Logger
}

// NewLibrary creates a library adapter. It panics without a client.
func NewLibrary(cfg LibraryConfig) *Library {
	if cfg.Client == nil {
		panic("library: client is required")
	}

	if cfg.CollectionPath == "" {
		cfg.CollectionPath = DefaultCollectionPath
	}

	if cfg.HealthPath == "" {
		cfg.HealthPath = DefaultHealthPath
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Library{
		client:         cfg.Client,
		collectionPath: cfg.CollectionPath,
		healthPath:     cfg.HealthPath,
		logger:         logger,
	}
}

// libraryQuote is the remote representation of one quote.
type libraryQuote struct {
	ID           domain.LooseString `json:"_id"`
	AltID        domain.LooseString `json:"id"`
	Content      domain.LooseString `json:"content"`
	Text         domain.LooseString `json:"text"`
	Author       domain.LooseString `json:"author"`
	Tags         domain.TagList     `json:"tags"`
	Fav          domain.Flag        `json:"fav"`
	Created      domain.Timestamp   `json:"created"`
	Updated      domain.Timestamp   `json:"updated"`
	DateAdded    domain.Timestamp   `json:"dateAdded"`
	DateModified domain.Timestamp   `json:"dateModified"`
}

type libraryEnvelope struct {
	Results *[]libraryQuote `json:"results"`
	Quotes  *[]libraryQuote `json:"quotes"`
}

// FetchDrafts downloads the collection named ref and returns its quotes
// as drafts, ready for the normalizer.
func (l *Library) FetchDrafts(ctx context.Context, ref string) ([]domain.Draft, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.NewValidationError("ref", "must not be empty")
	}

	const operation = "fetch collection"
	path := fmt.Sprintf(l.collectionPath, url.PathEscape(ref))

	l.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", path))

	resp, err := l.client.Get(ctx, path)
	if err != nil {
		return nil, MapHTTPError(nil, err, l.client.ServiceName(), operation, ref)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		defer func() { _ = resp.Body.Close() }()

		mapped := MapHTTPError(resp, nil, l.client.ServiceName(), operation, ref)
		l.logger.WarnContext(ctx, "library returned an error",
			slog.String("ref", ref),
			slog.Int("status", resp.StatusCode),
			slog.Any("error", mapped))

		return nil, mapped
	}

	data, err := l.client.ReadBody(resp)
	if err != nil {
		return nil, mapClientError(err, l.client.ServiceName(), operation)
	}

	items, err := decodePayload(data)
	if err != nil {
		return nil, err
	}

	drafts, err := TranslateSlice(items, translateQuote)
	if err != nil {
		return nil, err
	}

	l.logger.DebugContext(ctx, "fetched remote collection",
		slog.String("ref", ref),
		slog.Int("drafts", len(drafts)))

	return drafts, nil
}

// Name identifies the library in readiness checks.
func (l *Library) Name() string {
	return l.client.ServiceName()
}

// Check probes the library's health endpoint.
func (l *Library) Check(ctx context.Context) error {
	resp, err := l.client.Get(ctx, l.healthPath)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("library health returned status %d", resp.StatusCode)
	}

	return nil
}

func decodePayload(data []byte) ([]libraryQuote, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, domain.NewFormatError("empty remote document")
	}

	switch trimmed[0] {
	case '[':
		var items []libraryQuote
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, payloadError(err, "expected array of quote objects")
		}

		return items, nil

	case '{':
		var env libraryEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, payloadError(err, "unexpected envelope")
		}

		switch {
		case env.Results != nil:
			return *env.Results, nil
		case env.Quotes != nil:
			return *env.Quotes, nil
		}

		var single libraryQuote
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, payloadError(err, "expected quote object")
		}

		if single.Content.Trimmed() == "" && single.Text.Trimmed() == "" {
			return nil, domain.NewFormatError("remote document has no quotes")
		}

		return []libraryQuote{single}, nil

	default:
		return nil, domain.NewFormatError("expected array or object")
	}
}

func payloadError(err error, reason string) error {
	var syntax *json.SyntaxError
	if errors.As(err, &syntax) {
		return &domain.ParseError{Offset: syntax.Offset, Cause: err}
	}

	return domain.NewFormatError(reason)
}

func translateQuote(ext *libraryQuote) (domain.Draft, error) {
	d := domain.Draft{
		ID:      firstNonBlank(ext.ID, ext.AltID),
		Text:    firstNonBlank(ext.Content, ext.Text),
		Author:  ext.Author,
		Tags:    ext.Tags,
		Fav:     ext.Fav,
		Created: ext.Created,
		Updated: ext.Updated,
	}

	if d.Created == 0 {
		d.Created = ext.DateAdded
	}

	if d.Updated == 0 {
		d.Updated = ext.DateModified
	}

	return d, nil
}

func firstNonBlank(values ...domain.LooseString) domain.LooseString {
	for _, v := range values {
		if v.Trimmed() != "" {
			return v
		}
	}

	return ""
}
