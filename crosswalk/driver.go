// Package crosswalk drives a document through extraction, normalization
// and export.
//
// A run is synchronous and moves through the states Idle, Extracting,
// Normalizing, Exporting and Done, or stops in Failed. A failed run
// carries its errors and no documents. A successful run carries the
// sealed record, the requested documents and every warning raised on the
// way.
package crosswalk

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/geocrosswalk/export"
	"github.com/c360studio/geocrosswalk/instrument"
	"github.com/c360studio/geocrosswalk/record"
	"github.com/c360studio/geocrosswalk/source"
)

// AutoDetect asks every registered adapter to recognize the document.
const AutoDetect = "auto"

// RunMetadata identifies a run.
type RunMetadata struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	// Adapter is the schema name of the adapter that extracted the
	// document, empty when none was resolved.
	Adapter string
}

// Result is the outcome of one run.
type Result struct {
	State  State
	Record record.Record
	// Documents are keyed by exporter name. Order lists the names in the
	// order they were requested.
	Documents map[string]export.Document
	Order     []string
	Warnings  record.Warnings
	Errors    []error
	Meta      RunMetadata
}

// Err joins the run errors, nil for a successful run.
func (r *Result) Err() error {
	if r.State != StateFailed {
		return nil
	}
	return record.Issues(r.Errors)
}

// Ordered returns the documents in request order.
func (r *Result) Ordered() []export.Document {
	out := make([]export.Document, 0, len(r.Order))
	for _, name := range r.Order {
		out = append(out, r.Documents[name])
	}
	return out
}

// Driver runs documents through registered adapters and exporters.
type Driver struct {
	sources   *source.Registry
	exporters *export.Registry
	catalog   *instrument.Catalog
	metrics   *Metrics
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures a Driver.
type Option func(*Driver)

// WithSources replaces the default adapter registry.
func WithSources(r *source.Registry) Option {
	return func(d *Driver) { d.sources = r }
}

// WithExporters replaces the default exporter registry.
func WithExporters(r *export.Registry) Option {
	return func(d *Driver) { d.exporters = r }
}

// WithCatalog sets the instrument catalog used to resolve channel bands.
func WithCatalog(c *instrument.Catalog) Option {
	return func(d *Driver) { d.catalog = c }
}

// WithMetrics records every run on m.
func WithMetrics(m *Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithClock sets the time source for run metadata.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) { d.now = now }
}

// New creates a driver over the default registries.
func New(opts ...Option) *Driver {
	d := &Driver{
		sources:   source.Default(),
		exporters: export.Default(),
		catalog:   instrument.Global(),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run converts raw, read by the adapter registered as schema, into the
// named exporters' documents. Schema may be AutoDetect or empty to detect
// the adapter. The returned error is non-nil exactly when the run failed;
// the Result is returned in both cases.
func (d *Driver) Run(ctx context.Context, schema string, raw []byte, exporters ...string) (*Result, error) {
	res, err := d.run(ctx, schema, raw, exporters...)
	d.metrics.observe(res)
	return res, err
}

// run is Run without recording metrics.
func (d *Driver) run(ctx context.Context, schema string, raw []byte, exporters ...string) (*Result, error) {
	res := &Result{
		State:     StateIdle,
		Documents: make(map[string]export.Document),
		Meta:      RunMetadata{RunID: uuid.NewString(), StartedAt: d.now()},
	}
	logger := d.logger.With(slog.String("run_id", res.Meta.RunID))
	defer func() {
		res.Meta.FinishedAt = d.now()
	}()

	fail := func(errs ...error) (*Result, error) {
		// Failed is reachable from every non-terminal state.
		_ = res.advance(StateFailed)
		res.Errors = append(res.Errors, errs...)
		res.Documents = make(map[string]export.Document)
		res.Order = nil
		logger.Warn("Crosswalk run failed",
			slog.String("adapter", res.Meta.Adapter), slog.String("error", res.Err().Error()))
		return res, res.Err()
	}

	sinks, err := d.resolveExporters(exporters)
	if err != nil {
		return fail(err)
	}

	// Extracting
	if err := d.step(ctx, res, StateExtracting); err != nil {
		return fail(err)
	}
	adapter, err := d.resolveAdapter(schema, raw)
	if err != nil {
		return fail(err)
	}
	if cu, ok := adapter.(source.CatalogUser); ok && d.catalog != nil {
		adapter = cu.WithCatalog(d.catalog)
	}
	res.Meta.Adapter = adapter.Name()
	in, warnings, err := adapter.Extract(raw)
	res.Warnings = append(res.Warnings, warnings...)
	if err != nil {
		return fail(err)
	}
	if in == nil {
		return fail(fmt.Errorf("adapter %s returned no intermediate", adapter.Name()))
	}

	// Normalizing
	if err := d.step(ctx, res, StateNormalizing); err != nil {
		return fail(err)
	}
	rec, warnings, err := Normalizer{Catalog: d.catalog, Logger: logger}.Normalize(in)
	res.Warnings = append(res.Warnings, warnings...)
	if err != nil {
		if iss, ok := record.AsIssues(err); ok {
			return fail(iss...)
		}
		return fail(err)
	}
	rec.Seal()
	res.Record = rec

	// Exporting
	if err := d.step(ctx, res, StateExporting); err != nil {
		return fail(err)
	}
	for _, e := range sinks {
		doc, err := e.Export(rec.Clone())
		if err != nil {
			return fail(fmt.Errorf("export %s: %w", e.Name(), err))
		}
		res.Documents[e.Name()] = doc
		res.Order = append(res.Order, e.Name())
	}

	if err := res.advance(StateDone); err != nil {
		return fail(err)
	}
	logger.Debug("Crosswalk run complete",
		slog.String("adapter", res.Meta.Adapter),
		slog.String("record", rec.Identity.ID),
		slog.Int("documents", len(res.Order)),
		slog.Int("warnings", len(res.Warnings)))
	return res, nil
}

// step checks for cancellation between phases and advances the run.
func (d *Driver) step(ctx context.Context, res *Result, to State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return res.advance(to)
}

func (d *Driver) resolveAdapter(schema string, raw []byte) (source.Adapter, error) {
	schema = strings.TrimSpace(schema)
	if schema == "" || schema == AutoDetect {
		return d.sources.Detect(raw)
	}
	return d.sources.Get(schema)
}

// resolveExporters looks every exporter up before the run starts so a
// typo fails fast. Repeated names are exported once.
func (d *Driver) resolveExporters(names []string) ([]export.Exporter, error) {
	var (
		out  []export.Exporter
		errs []error
	)
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if seen[name] {
			continue
		}
		seen[name] = true
		e, err := d.exporters.Get(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, e)
	}
	return out, errors.Join(errs...)
}
