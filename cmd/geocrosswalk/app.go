package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360studio/geocrosswalk/config"
	"github.com/c360studio/geocrosswalk/crosswalk"
	"github.com/c360studio/geocrosswalk/distribution"
	"github.com/c360studio/geocrosswalk/export"
	"github.com/c360studio/geocrosswalk/export/geodcat"
	"github.com/c360studio/geocrosswalk/export/tdml"
	"github.com/c360studio/geocrosswalk/graph"
)

// App wires the crosswalk driver to the file system and, optionally, to
// the knowledge graph.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	driver  *crosswalk.Driver
	metrics *prometheus.Registry

	natsConn  *nats.Conn
	publisher graph.Publisher

	writtenMu sync.Mutex
	written   map[string]bool
}

// AppOptions are per-invocation settings that are not part of the config
// file.
type AppOptions struct {
	// DataDir is the root that TrainingDML-AI exports enumerate sample
	// files under. Empty means samples are not enumerated.
	DataDir string
	// Publish sends every record to the knowledge graph.
	Publish bool
}

// NewApp creates a new application instance.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts AppOptions) (*App, error) {
	reg := prometheus.NewRegistry()
	exporters, err := exporterRegistry(cfg, logger, opts.DataDir)
	if err != nil {
		return nil, err
	}
	app := &App{
		cfg:     cfg,
		logger:  logger,
		metrics: reg,
		written: make(map[string]bool),
		driver: crosswalk.New(
			crosswalk.WithLogger(logger),
			crosswalk.WithCatalog(cfg.Catalog()),
			crosswalk.WithExporters(exporters),
			crosswalk.WithMetrics(crosswalk.NewMetrics(reg)),
		),
	}

	if opts.Publish {
		if err := app.connect(ctx); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// exporterRegistry copies the registered exporters, applying the
// configured graph profile and the sample directory.
func exporterRegistry(cfg *config.Config, logger *slog.Logger, dataDir string) (*export.Registry, error) {
	reg := export.NewRegistry()
	for _, name := range export.Default().Names() {
		e, err := export.Default().Get(name)
		if err != nil {
			return nil, err
		}
		switch x := e.(type) {
		case geodcat.Exporter:
			e = x.WithProfile(export.Profile(cfg.Export.Profile))
		case tdml.Exporter:
			var w distribution.Walker
			if dataDir != "" {
				w = distribution.NewFSWalker(os.DirFS(dataDir))
			}
			e = tdml.New(w, logger)
		}
		if err := reg.Register(e); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (a *App) connect(ctx context.Context) error {
	if a.cfg.NATS.URL == "" {
		return errors.New("publishing needs nats.url in the config")
	}
	a.logger.Info("Connecting to NATS", slog.String("url", a.cfg.NATS.URL))
	conn, err := nats.Connect(a.cfg.NATS.URL, nats.Name(appName))
	if err != nil {
		return fmt.Errorf("connect to NATS: %w", err)
	}
	pub, err := graph.NewJetStreamPublisher(conn)
	if err != nil {
		conn.Close()
		return err
	}
	if err := pub.EnsureStream(ctx, a.cfg.NATS.Stream); err != nil {
		conn.Close()
		return err
	}
	a.natsConn = conn
	a.publisher = pub
	return nil
}

// Shutdown drains the NATS connection, if any.
func (a *App) Shutdown() {
	if a.natsConn != nil {
		_ = a.natsConn.Drain()
		a.natsConn.Close()
	}
}

// Convert runs one document and reports its warnings. The returned
// result is nil only if the driver returned none.
func (a *App) Convert(ctx context.Context, name string, raw []byte) (*crosswalk.Result, error) {
	res, err := a.driver.Run(ctx, a.cfg.Crosswalk.Schema, raw, a.cfg.Crosswalk.Exporters...)
	a.report(name, res)
	if err != nil {
		return res, fmt.Errorf("%s: %w", name, err)
	}
	if err := a.publish(ctx, res); err != nil {
		return res, fmt.Errorf("%s: %w", name, err)
	}
	return res, nil
}

// Batch runs many documents through the driver concurrently.
func (a *App) Batch(ctx context.Context, inputs []crosswalk.Input) ([]crosswalk.BatchResult, error) {
	results, err := a.driver.Batch(ctx, inputs, a.cfg.Batch.Concurrency, a.cfg.Crosswalk.Exporters...)
	for _, r := range results {
		a.report(r.Input, r.Result)
		if r.Err == nil {
			if perr := a.publish(ctx, r.Result); perr != nil {
				a.logger.Warn("Failed to publish record", slog.String("input", r.Input), slog.String("error", perr.Error()))
			}
		}
	}
	return results, err
}

func (a *App) publish(ctx context.Context, res *crosswalk.Result) error {
	if a.publisher == nil {
		return nil
	}
	return graph.PublishRecord(ctx, a.publisher, res.Record, "geocrosswalk."+res.Meta.Adapter, time.Now())
}

func (a *App) report(name string, res *crosswalk.Result) {
	if res == nil {
		return
	}
	for _, w := range res.Warnings {
		a.logger.Warn(w.Message,
			slog.String("input", name),
			slog.String("code", string(w.Code)),
			slog.String("path", w.Path))
	}
	a.logger.Debug("Converted",
		slog.String("input", name),
		slog.String("run_id", res.Meta.RunID),
		slog.String("adapter", res.Meta.Adapter),
		slog.String("state", res.State.String()))
}

// ErrOutputExists is returned when an output file exists and overwriting
// is disabled.
var ErrOutputExists = errors.New("output file exists")

// WriteDocuments writes every document of a successful run next to each
// other in the output directory as <stem>.<exporter><ext>.
func (a *App) WriteDocuments(input string, res *crosswalk.Result) ([]string, error) {
	dir := a.cfg.Export.OutputDir
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	var written []string
	for _, doc := range res.Ordered() {
		path := filepath.Join(dir, OutputName(input, doc))
		if !a.cfg.Export.Overwrite {
			if _, err := os.Stat(path); err == nil {
				return written, fmt.Errorf("%w: %s", ErrOutputExists, path)
			}
		}
		if err := os.WriteFile(path, doc.Body, 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
		a.remember(path)
	}
	return written, nil
}

func (a *App) remember(path string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return
	}
	a.writtenMu.Lock()
	a.written[abs] = true
	a.writtenMu.Unlock()
}

// wrote reports whether the app wrote the file at absPath.
func (a *App) wrote(absPath string) bool {
	a.writtenMu.Lock()
	defer a.writtenMu.Unlock()
	return a.written[absPath]
}

// OutputName is the file name of one exported document.
func OutputName(input string, doc export.Document) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if stem == "" || stem == "-" || stem == "." {
		stem = "stdin"
	}
	return stem + "." + doc.Exporter + doc.Extension
}
