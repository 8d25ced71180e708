package catalog

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/domain/catalog"
	"github.com/vitrina/backend/internal/domain/shared"
	"github.com/vitrina/backend/internal/domain/shared/valueobject"
	"github.com/vitrina/backend/internal/infrastructure/telemetry"
)

// LoadRecorder receives catalog load outcomes for metrics
type LoadRecorder interface {
	RecordCatalogLoad(ctx context.Context, productCount, warningCount int)
	RecordCatalogLoadFailure(ctx context.Context, code string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCatalogLoad(context.Context, int, int)      {}
func (nopRecorder) RecordCatalogLoadFailure(context.Context, string) {}

// Loader fetches a product collection from the catalog source, normalizes it
// and installs it in a registry
type Loader struct {
	source   catalog.Source
	logger   *zap.Logger
	recorder LoadRecorder
	locale   string
}

// NewLoader creates a new Loader
func NewLoader(source catalog.Source, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		source:   source,
		logger:   logger,
		recorder: nopRecorder{},
		locale:   valueobject.DefaultLocale,
	}
}

// WithRecorder sets the metrics recorder
func (l *Loader) WithRecorder(recorder LoadRecorder) *Loader {
	if recorder != nil {
		l.recorder = recorder
	}
	return l
}

// WithLocale sets the locale used for price labels
func (l *Loader) WithLocale(locale string) *Loader {
	if locale != "" {
		l.locale = locale
	}
	return l
}

// Locale returns the locale used for price labels
func (l *Loader) Locale() string {
	return l.locale
}

// LoadRaw parses the two filter parameters the way page query strings are
// read and then loads. Unparseable input fails without any network I/O.
func (l *Loader) LoadRaw(ctx context.Context, registry *catalog.Registry, rawCategoryID, rawApprovedLine string) (*LoadResult, error) {
	q, err := catalog.ParseQuery(rawCategoryID, rawApprovedLine)
	if err != nil {
		l.recorder.RecordCatalogLoadFailure(ctx, shared.CodeValidation)
		return nil, err
	}
	return l.Load(ctx, registry, q)
}

// Load fetches and normalizes the catalog for q. On success the registry is
// replaced wholesale; on any failure it is left untouched.
func (l *Loader) Load(ctx context.Context, registry *catalog.Registry, q catalog.Query) (*LoadResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "catalog", "load")
	defer span.End()
	telemetry.SetAttributes(span,
		"catalog.category_id", q.CategoryID,
		"catalog.approved_line", q.ApprovedLine,
	)

	if _, err := catalog.NewQuery(q.CategoryID, q.ApprovedLine); err != nil {
		l.fail(ctx, span, q, err)
		return nil, err
	}

	body, err := l.source.Fetch(ctx, q)
	if err != nil {
		l.fail(ctx, span, q, err)
		return nil, err
	}

	raws, parseWarnings, err := catalog.ParseCollection(body)
	if err != nil {
		l.fail(ctx, span, q, err)
		return nil, err
	}

	products, warnings := catalog.NormalizeAll(raws)
	warnings = append(parseWarnings, warnings...)
	registry.Replace(products, q)

	for _, w := range warnings {
		l.logger.Warn("Catalog entry normalized with defaults",
			zap.Int("position", w.Position),
			zap.String("code", w.Code),
			zap.String("detail", w.Message),
		)
	}
	l.logger.Info("Catalog loaded",
		zap.Int("category_id", q.CategoryID),
		zap.Int("approved_line", q.ApprovedLine),
		zap.Int("products", len(products)),
		zap.Int("warnings", len(warnings)),
	)
	l.recorder.RecordCatalogLoad(ctx, len(products), len(warnings))
	telemetry.SetAttributes(span, "catalog.products", len(products), "catalog.warnings", len(warnings))

	if warnings == nil {
		warnings = make([]catalog.NormalizationWarning, 0)
	}
	return &LoadResult{
		Query:    q,
		Products: ToProductResponses(products, l.locale),
		Warnings: warnings,
		LoadedAt: registry.LoadedAt(),
	}, nil
}

// View returns the products currently installed in registry
func (l *Loader) View(registry *catalog.Registry) *CatalogView {
	view := &CatalogView{
		Products: ToProductResponses(registry.Products(), l.locale),
	}
	if q, ok := registry.LastQuery(); ok {
		view.Query = &q
		loadedAt := registry.LoadedAt()
		view.LoadedAt = &loadedAt
	}
	return view
}

func (l *Loader) fail(ctx context.Context, span trace.Span, q catalog.Query, err error) {
	telemetry.RecordError(span, err)

	code := shared.CodeInternal
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code = domainErr.Code
	}
	fields := []zap.Field{
		zap.Int("category_id", q.CategoryID),
		zap.Int("approved_line", q.ApprovedLine),
		zap.String("code", code),
		zap.Error(err),
	}
	var transportErr *catalog.TransportError
	if errors.As(err, &transportErr) && transportErr.StatusCode != 0 {
		fields = append(fields, zap.Int("status_code", transportErr.StatusCode))
	}
	l.logger.Error("Catalog load failed", fields...)
	l.recorder.RecordCatalogLoadFailure(ctx, code)
}
