// Package main provides the geocrosswalk binary entry point.
// geocrosswalk converts geospatial dataset metadata between GeoCroissant,
// STAC, GeoDCAT-AP, TrainingDML-AI and the other supported schemas.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/c360studio/geocrosswalk/config"
	"github.com/c360studio/geocrosswalk/export"
	"github.com/c360studio/geocrosswalk/source"

	// Register exporters via init()
	_ "github.com/c360studio/geocrosswalk/export/croissant"
	_ "github.com/c360studio/geocrosswalk/export/geodcat"
	_ "github.com/c360studio/geocrosswalk/export/stac"
	_ "github.com/c360studio/geocrosswalk/export/tdml"

	// Register source adapters via init()
	_ "github.com/c360studio/geocrosswalk/source/arrayfile"
	_ "github.com/c360studio/geocrosswalk/source/ceda"
	_ "github.com/c360studio/geocrosswalk/source/croissant"
	_ "github.com/c360studio/geocrosswalk/source/earthengine"
	_ "github.com/c360studio/geocrosswalk/source/geodcat"
	_ "github.com/c360studio/geocrosswalk/source/stac"
	_ "github.com/c360studio/geocrosswalk/source/tdml"
	_ "github.com/c360studio/geocrosswalk/source/umm"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "geocrosswalk"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globals are the persistent flags and the state they resolve to.
type globals struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
}

func rootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Geospatial metadata crosswalk",
		Long: `geocrosswalk converts geospatial dataset metadata between schemas.

Every input is read by a source adapter, normalized into one canonical
record and written by one or more exporters:
- GeoCroissant JSON-LD (the canonical form)
- STAC items
- GeoDCAT-AP (JSON-LD, Turtle, N-Triples)
- OGC TrainingDML-AI`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.resolve(cmd.ErrOrStderr())
		},
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(convertCmd(g), batchCmd(g), watchCmd(g), formatsCmd(), configCmd(g))

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// resolve loads the layered configuration and configures logging.
func (g *globals) resolve(stderr io.Writer) error {
	bootstrap := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	cfg, err := config.NewLoader(bootstrap).Load(g.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	level, err := config.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(stderr, opts)
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(stderr, opts)
	}
	g.cfg = cfg
	g.logger = slog.New(handler)
	return nil
}

func formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List source schemas and export formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SOURCES")
			for _, name := range source.Default().Names() {
				a, _ := source.Default().Get(name)
				fmt.Fprintf(w, "  %s\t%s\n", name, a.Description())
			}
			fmt.Fprintln(w, "\nEXPORTERS")
			for _, name := range export.Default().Names() {
				e, _ := export.Default().Get(name)
				fmt.Fprintf(w, "  %s\t%s\t%s\n", name, e.MediaType(), e.Description())
			}
			return w.Flush()
		},
	}
}

func configCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(g.cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the user config file with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.NewLoader(g.logger).EnsureUserConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	})
	return cmd
}

// sortedKeys returns map keys in sorted order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
