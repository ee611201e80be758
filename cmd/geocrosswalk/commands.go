package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/c360studio/geocrosswalk/config"
	"github.com/c360studio/geocrosswalk/crosswalk"
	"github.com/c360studio/geocrosswalk/watch"
)

// runFlags are the flags convert, batch and watch share. Set flags
// override the loaded configuration.
type runFlags struct {
	from      string
	to        []string
	out       string
	profile   string
	overwrite bool
	dataDir   string
	publish   bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.from, "from", "f", "", "Source schema, or auto to detect it")
	cmd.Flags().StringSliceVarP(&f.to, "to", "t", nil, "Exporters to run (repeatable)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output directory")
	cmd.Flags().StringVar(&f.profile, "profile", "", "GeoDCAT-AP profile (core, geo, full)")
	cmd.Flags().BoolVar(&f.overwrite, "overwrite", false, "Replace existing output files")
	cmd.Flags().StringVar(&f.dataDir, "data-dir", "", "Directory TrainingDML-AI exports enumerate samples under")
	cmd.Flags().BoolVar(&f.publish, "publish", false, "Publish records to the knowledge graph over NATS")
}

// apply returns a copy of cfg with the set flags applied.
func (f *runFlags) apply(cfg *config.Config) (*config.Config, error) {
	c := *cfg
	if f.from != "" {
		c.Crosswalk.Schema = f.from
	}
	if len(f.to) > 0 {
		c.Crosswalk.Exporters = f.to
	}
	if f.out != "" {
		c.Export.OutputDir = f.out
	}
	if f.profile != "" {
		c.Export.Profile = f.profile
	}
	if f.overwrite {
		c.Export.Overwrite = true
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (f *runFlags) app(ctx context.Context, g *globals) (*App, error) {
	cfg, err := f.apply(g.cfg)
	if err != nil {
		return nil, err
	}
	return NewApp(ctx, cfg, g.logger, AppOptions{DataDir: f.dataDir, Publish: f.publish})
}

func convertCmd(g *globals) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "convert <file|->",
		Short: "Convert one metadata document",
		Long: `Convert reads one metadata document, or standard input for "-", and
writes one file per exporter to the output directory. With --out - the
documents are written to standard output instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			toStdout := f.out == "-"
			if toStdout {
				f.out = ""
			}
			app, err := f.app(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer app.Shutdown()

			name := args[0]
			raw, err := readInput(cmd.InOrStdin(), name)
			if err != nil {
				return err
			}
			res, err := app.Convert(cmd.Context(), name, raw)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if toStdout {
				for _, doc := range res.Ordered() {
					if _, err := out.Write(doc.Body); err != nil {
						return err
					}
					if n := len(doc.Body); n > 0 && doc.Body[n-1] != '\n' {
						fmt.Fprintln(out)
					}
				}
				return nil
			}
			written, err := app.WriteDocuments(name, res)
			for _, p := range written {
				fmt.Fprintln(out, p)
			}
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func readInput(stdin io.Reader, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return raw, nil
}

func batchCmd(g *globals) *cobra.Command {
	f := &runFlags{}
	var pattern string
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Convert every matching document below a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := f.app(cmd.Context(), g)
			if err != nil {
				return err
			}
			defer app.Shutdown()
			if pattern == "" {
				pattern = app.cfg.Batch.Pattern
			}

			inputs, err := collect(args[0], pattern, app.cfg)
			if err != nil {
				return err
			}
			if len(inputs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no documents match %s in %s\n", pattern, args[0])
				return nil
			}

			results, err := app.Batch(cmd.Context(), inputs)
			if err != nil {
				return err
			}
			return summarize(cmd.OutOrStdout(), app, results)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&pattern, "pattern", "", "Input glob below the directory (default from config)")
	return cmd
}

// collect reads the documents matching pattern below dir, skipping the
// output directory.
func collect(dir, pattern string, cfg *config.Config) ([]crosswalk.Input, error) {
	matches, err := doublestar.Glob(os.DirFS(dir), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	outAbs, _ := filepath.Abs(cfg.Export.OutputDir)
	dirAbs, _ := filepath.Abs(dir)

	inputs := make([]crosswalk.Input, 0, len(matches))
	for _, m := range matches {
		path := filepath.Join(dir, filepath.FromSlash(m))
		if outAbs != dirAbs {
			if abs, _ := filepath.Abs(path); filepath.Dir(abs) == outAbs {
				continue
			}
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		inputs = append(inputs, crosswalk.Input{Name: path, Schema: cfg.Crosswalk.Schema, Raw: raw})
	}
	return inputs, nil
}

// summarize writes the documents of every successful run and reports the
// failures. It returns an error if any input failed.
func summarize(out io.Writer, app *App, results []crosswalk.BatchResult) error {
	failed := 0
	byAdapter := make(map[string]int)
	for _, r := range results {
		err := r.Err
		if err == nil {
			_, err = app.WriteDocuments(r.Input, r.Result)
		}
		if err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", r.Input, err)
			continue
		}
		byAdapter[r.Result.Meta.Adapter]++
		fmt.Fprintf(out, "ok   %s\n", r.Input)
	}

	fmt.Fprintf(out, "converted %d of %d documents\n", len(results)-failed, len(results))
	for _, name := range sortedKeys(byAdapter) {
		fmt.Fprintf(out, "  %s: %d\n", name, byAdapter[name])
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

func watchCmd(g *globals) *cobra.Command {
	f := &runFlags{}
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Convert documents below a directory whenever they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			app, err := f.app(ctx, g)
			if err != nil {
				return err
			}
			defer app.Shutdown()

			if metricsAddr != "" {
				srv := &http.Server{
					Addr:              metricsAddr,
					Handler:           metricsMux(app),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						app.logger.Error("Metrics server failed", slog.String("error", err.Error()))
					}
				}()
				defer func() {
					shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
					defer done()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			return app.Watch(ctx, args[0], cmd.OutOrStdout())
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

func metricsMux(app *App) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(app.metrics, promhttp.HandlerOpts{}))
	return mux
}

// Watch converts every matching document below dir as it changes, until
// ctx ends.
func (a *App) Watch(ctx context.Context, dir string, out io.Writer) error {
	w, err := watch.New(watch.Config{
		Dir:         dir,
		Pattern:     a.cfg.Batch.Pattern,
		Debounce:    a.cfg.Batch.Debounce,
		ExcludeDirs: []string{a.cfg.Export.OutputDir},
		Skip:        a.wrote,
	}, a.logger)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	// Rewriting outputs on every change is the point of watching.
	a.cfg.Export.Overwrite = true

	for ev := range w.Events() {
		res, err := a.Convert(ctx, ev.AbsPath, ev.Content)
		if err == nil {
			_, err = a.WriteDocuments(ev.AbsPath, res)
		}
		if err != nil {
			a.logger.Error("Conversion failed", slog.String("input", ev.Path), slog.String("error", err.Error()))
			fmt.Fprintf(out, "FAIL %s: %v\n", ev.Path, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s\n", ev.Path)
	}
	return nil
}
