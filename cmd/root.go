package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oxidoc/oxidoc/internal/config"
	"github.com/oxidoc/oxidoc/internal/emit"
	"github.com/oxidoc/oxidoc/internal/link"
	"github.com/oxidoc/oxidoc/internal/nav"
	"github.com/oxidoc/oxidoc/internal/render"
	"github.com/oxidoc/oxidoc/internal/resolve"
	"github.com/oxidoc/oxidoc/internal/rustdoc"
	"github.com/oxidoc/oxidoc/internal/writer"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "oxidoc <export.json>",
	Short: "Convert rustdoc JSON exports into Docusaurus documentation",
	Example: `  oxidoc target/doc/mycrate.json
  oxidoc --granularity per-module --output docs/api mycrate.json
  oxidoc --include-private mycrate.json.zst`,
	Args: cobra.ExactArgs(1),
	Run:  runConvert,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("command failed: %v", err)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log per-item diagnostics (unresolved links, skipped items)")

	flags := rootCmd.PersistentFlags()
	flags.String("output", "docs/api", "directory documents are written under")
	flags.String("base-path", "", "URL prefix for generated links")
	flags.Bool("include-private", false, "include non-public items")
	flags.String("granularity", "per-item", "output granularity: single, per-module or per-item")
	flags.StringSlice("workspace", nil, "sibling crate names linked internally instead of docs.rs")
	flags.String("sidebar", "sidebars-rust.js", "sidebar module path, relative to the output root")
	flags.Bool("sidebar-collapsed", false, "collapse sidebar categories initially")

	viper.BindPFlag("output", flags.Lookup("output"))
	viper.BindPFlag("base_path", flags.Lookup("base-path"))
	viper.BindPFlag("include_private", flags.Lookup("include-private"))
	viper.BindPFlag("granularity", flags.Lookup("granularity"))
	viper.BindPFlag("workspace", flags.Lookup("workspace"))
	viper.BindPFlag("sidebar.path", flags.Lookup("sidebar"))
	viper.BindPFlag("sidebar.collapsed", flags.Lookup("sidebar-collapsed"))
}

func runConvert(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	units, err := convert(args[0], cfg, cfg.Workspace)
	if err != nil {
		log.Fatalf("convert failed: %v", err)
	}
	if err := writeOutput(units, cfg); err != nil {
		log.Fatalf("write failed: %v", err)
	}
	fmt.Printf("wrote %d documents under %s\n", len(units), cfg.OutputRoot)
}

// loadConfig merges config file, environment and flags, and applies the
// verbosity setting to the process-wide logger.
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if verbose {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	return cfg
}

// convert runs the pipeline for one rustdoc export and returns the
// planned output units. The workspace list controls which sibling crates
// resolve to internal links.
func convert(path string, cfg *config.Config, workspace []string) ([]emit.Unit, error) {
	crate, err := rustdoc.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return plan(crate, cfg, workspace), nil
}

// plan resolves and renders one loaded crate into output units.
func plan(crate *rustdoc.Crate, cfg *config.Config, workspace []string) []emit.Unit {
	slog.Info("loaded export", "crate", crate.Name(), "items", len(crate.Index))

	res := resolve.Resolve(crate, resolve.Options{IncludePrivate: cfg.IncludePrivate})
	links := link.NewResolver(res, cfg.BasePath, workspace)
	renderer := render.New(res, links, cfg.IncludePrivate)

	return emit.NewPlanner(res, renderer, cfg.OutputRoot).Plan(cfg.Granularity)
}

// writeOutput persists the planned units and the sidebar derived from
// them.
func writeOutput(units []emit.Unit, cfg *config.Config) error {
	emit.SortUnits(units)
	if err := writer.Write(context.Background(), units); err != nil {
		return err
	}

	tree := nav.Build(units, nav.Options{
		Root:      cfg.OutputRoot,
		Collapsed: cfg.Sidebar.Collapsed,
	})
	return writer.WriteSidebar(cfg.SidebarPath(), nav.Sidebars(tree, cfg.Sidebar.RootLink))
}
