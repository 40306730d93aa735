// Package main provides shopbotctl, the admin CLI for seeding the record store
// and talking to the chatbot from a terminal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shoppit/backend/internal/app"
	"github.com/shoppit/backend/pkg/config"
	"github.com/shoppit/backend/pkg/logger"
)

type cli struct {
	cfgFile    string
	outputJSON bool
	verbose    bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "shopbotctl",
		Short: "Admin CLI for the Shoppit chatbot",
		Long: `shopbotctl manages the chatbot's record store and lets you query the
chatbot without running the API server.

Use this tool to:
- Seed the sample catalog and the FAQ set
- Ask the chatbot a question
- List the stored FAQs`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(c.cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			c.cfg = cfg

			if c.verbose {
				if err := logger.Init("debug", "console", "stderr"); err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "config file path (default: search ./config.yaml)")
	root.PersistentFlags().BoolVar(&c.outputJSON, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(newSeedCmd(c))
	root.AddCommand(newAskCmd(c))
	root.AddCommand(newFAQsCmd(c))

	return root
}

// open builds the chatbot from the loaded configuration.
func (c *cli) open(ctx context.Context) (*app.App, error) {
	shop, err := app.New(ctx, c.cfg)
	if err != nil {
		return nil, fmt.Errorf("open chatbot: %w", err)
	}
	return shop, nil
}

func (c *cli) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	defer logger.Sync()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
