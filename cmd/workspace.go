package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/oxidoc/oxidoc/internal/emit"
	"github.com/oxidoc/oxidoc/internal/rustdoc"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace <export.json>...",
	Short: "Convert several exports from one workspace together",
	Long: `Converts each export in turn under a shared output root. Cross-crate
doc links between the listed crates resolve to internal paths instead of
docs.rs URLs.`,
	Example: `  oxidoc workspace target/doc/core-lib.json target/doc/cli.json`,
	Args:    cobra.MinimumNArgs(1),
	Run:     runWorkspace,
}

func init() {
	rootCmd.AddCommand(workspaceCmd)
}

func runWorkspace(cmd *cobra.Command, args []string) {
	cfg := loadConfig()

	// Every listed crate is a sibling of every other, on top of any
	// names the configuration already declares.
	crates := make([]*rustdoc.Crate, 0, len(args))
	workspace := append([]string(nil), cfg.Workspace...)
	for _, path := range args {
		crate, err := rustdoc.LoadFile(path)
		if err != nil {
			log.Fatalf("convert failed: %v", err)
		}
		crates = append(crates, crate)
		workspace = append(workspace, crate.Name())
	}

	var units []emit.Unit
	for _, crate := range crates {
		units = append(units, plan(crate, cfg, workspace)...)
	}
	if err := writeOutput(units, cfg); err != nil {
		log.Fatalf("write failed: %v", err)
	}
	fmt.Printf("wrote %d documents for %d crates under %s\n", len(units), len(crates), cfg.OutputRoot)
}
