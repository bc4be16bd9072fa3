package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	cfotel "github.com/glamsite/glamsite/internal/adapter/otel"
	"github.com/glamsite/glamsite/internal/domain"
	"github.com/glamsite/glamsite/internal/domain/content"
	"github.com/glamsite/glamsite/internal/logger"
	"github.com/glamsite/glamsite/internal/port/blob"
)

// Authorizer decides whether a session token may mutate content.
type Authorizer interface {
	IsAuthorized(ctx context.Context, token string) bool
}

// Read outcomes, as logged and counted.
const (
	ReadStored    = "stored"
	ReadAbsent    = "absent"
	ReadFault     = "fault"
	ReadMalformed = "malformed"
)

// ContentOption configures a ContentService.
type ContentOption func(*ContentService)

// WithValidator installs a validation hook for one section. It runs after
// the object check on every write to that section.
func WithValidator(s content.Section, v content.Validator) ContentOption {
	return func(svc *ContentService) {
		svc.validators[s] = v
	}
}

// WithStrictShapes installs content.ShapeValidator for every section that
// has no other validator.
func WithStrictShapes() ContentOption {
	return func(svc *ContentService) {
		for _, s := range content.Sections {
			if _, ok := svc.validators[s]; !ok {
				svc.validators[s] = content.ShapeValidator
			}
		}
	}
}

// WithMetrics records read and write outcomes on m.
func WithMetrics(m *cfotel.Metrics) ContentOption {
	return func(svc *ContentService) {
		svc.metrics = m
	}
}

// ContentService is the section document store. It holds no content state:
// every read is one blob Get and every write is one blob Put.
type ContentService struct {
	store      blob.Store
	gate       Authorizer
	validators map[content.Section]content.Validator
	metrics    *cfotel.Metrics
}

// NewContentService creates a ContentService over store, gating writes on gate.
func NewContentService(store blob.Store, gate Authorizer, opts ...ContentOption) *ContentService {
	svc := &ContentService{
		store:      store,
		gate:       gate,
		validators: make(map[content.Section]content.Validator),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Sections returns the known sections in their canonical order.
func (s *ContentService) Sections() []content.Section {
	out := make([]content.Section, len(content.Sections))
	copy(out, content.Sections)
	return out
}

// Read returns the stored document for section, or its scaffold when nothing
// usable is stored. Only an unknown section is an error.
func (s *ContentService) Read(ctx context.Context, section string) (content.Document, error) {
	sec, err := content.ParseSection(section)
	if err != nil {
		return nil, err
	}

	ctx, span := cfotel.StartContentSpan(ctx, "read", sec.String())
	defer span.End()

	doc, outcome, cause := s.load(ctx, sec)
	span.SetAttributes(attribute.String("content.read_outcome", outcome))
	s.metrics.RecordRead(ctx, sec.String(), outcome)

	log := logger.FromContext(ctx).With("section", sec.String(), "outcome", outcome)
	switch outcome {
	case ReadStored:
		log.Debug("content read", "bytes", len(doc))
	case ReadAbsent:
		log.Info("content not stored, serving scaffold")
	case ReadMalformed:
		log.Warn("stored content unusable, serving scaffold", "error", cause)
	case ReadFault:
		log.Error("blob read failed, serving scaffold", "error", cause)
	}
	return doc, nil
}

func (s *ContentService) load(ctx context.Context, sec content.Section) (content.Document, string, error) {
	data, found, err := s.store.Get(ctx, content.Key(sec))
	switch {
	case err != nil:
		return content.Scaffold(sec), ReadFault, err
	case !found:
		return content.Scaffold(sec), ReadAbsent, nil
	}
	if err := content.CheckObject(data); err != nil {
		return content.Scaffold(sec), ReadMalformed, err
	}
	return content.Document(data), ReadStored, nil
}

// Write replaces the whole document for section and echoes it back.
// Checks run in order: known section, authorized session, configured write
// credential, JSON object, section validator. There is no merge, lock,
// version check or retry; the last completed write wins.
func (s *ContentService) Write(ctx context.Context, section string, doc content.Document, token string) (content.Document, error) {
	sec, err := content.ParseSection(section)
	if err != nil {
		return nil, err
	}

	ctx, span := cfotel.StartContentSpan(ctx, "write", sec.String())
	out, err := s.write(ctx, sec, doc, token)
	cfotel.EndSpan(span, err)

	outcome := writeOutcome(err)
	s.metrics.RecordWrite(ctx, sec.String(), outcome)

	log := logger.FromContext(ctx).With("section", sec.String(), "outcome", outcome)
	switch {
	case err == nil:
		log.Info("content written", "bytes", len(doc))
	case outcome == "upstream_error" || outcome == "misconfigured":
		log.Error("content write failed", "error", err)
	default:
		log.Warn("content write rejected", "error", err)
	}
	return out, err
}

func (s *ContentService) write(ctx context.Context, sec content.Section, doc content.Document, token string) (content.Document, error) {
	if !s.gate.IsAuthorized(ctx, token) {
		return nil, domain.ErrUnauthorized
	}
	if !s.store.Writable() {
		return nil, fmt.Errorf("%w: blob token not configured", domain.ErrMisconfigured)
	}
	if err := s.validate(sec, doc); err != nil {
		return nil, err
	}
	if err := s.store.Put(ctx, content.Key(sec), doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUpstreamWrite, err)
	}
	return doc, nil
}

// Validate runs the document checks Write applies, without the session or
// backend checks and without storing anything.
func (s *ContentService) Validate(section string, doc content.Document) error {
	sec, err := content.ParseSection(section)
	if err != nil {
		return err
	}
	return s.validate(sec, doc)
}

func (s *ContentService) validate(sec content.Section, doc content.Document) error {
	if err := content.CheckObject(doc); err != nil {
		return err
	}
	v, ok := s.validators[sec]
	if !ok {
		return nil
	}
	if err := v(sec, doc); err != nil {
		if !errors.Is(err, domain.ErrValidation) {
			err = fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		return err
	}
	return nil
}

func writeOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, domain.ErrMisconfigured):
		return "misconfigured"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrUpstreamWrite):
		return "upstream_error"
	}
	return "error"
}
