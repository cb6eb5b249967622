package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tcollab-dev/tcollab/internal/config"
)

func newInitCommand() *cobra.Command {
	var title string
	var listen string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a tcollab deployment directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(absDir, title, listen)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "default session title")
	cmd.Flags().StringVar(&listen, "listen", "", "listen address")

	return cmd
}

func runInit(dir, title, listen string) error {
	cfgPath := filepath.Join(dir, "tcollab.yaml")
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	}

	cfg := config.Default()
	if title != "" {
		cfg.Session.DefaultTitle = title
	}
	if listen != "" {
		cfg.Server.Listen = listen
	}

	// The board UI assets are served from here when present.
	if err := os.MkdirAll(filepath.Join(dir, cfg.Server.PublicDir), 0o755); err != nil {
		return fmt.Errorf("creating public directory: %w", err)
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("Initialized tcollab deployment in %s\n", dir)
	return nil
}
