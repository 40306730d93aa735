package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shoppit/backend/internal/seed"
)

func newSeedCmd(c *cli) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load products and FAQs into the record store",
		Long: `Seed upserts products (by slug) and FAQs (by question). Without --file the
built-in sample catalog and the Shoppit FAQ set are loaded. HTML in product
descriptions is reduced to plain text. Running it twice is safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			catalog, err := loadCatalog(file)
			if err != nil {
				return err
			}

			shop, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer shop.Close()

			res, err := seed.NewLoader(shop.DB).Load(ctx, catalog)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}

			// Cached searches predate the new catalog.
			if shop.SearchCache != nil {
				if err := shop.SearchCache.Invalidate(ctx); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: search cache not cleared: %v\n", err)
				}
			}

			if c.outputJSON {
				return c.printJSON(cmd.OutOrStdout(), map[string]int{
					"products": res.Products,
					"faqs":     res.FAQs,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products and %d FAQs\n", res.Products, res.FAQs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file (default: built-in catalog)")

	return cmd
}

func loadCatalog(file string) (*seed.Catalog, error) {
	if file == "" {
		return seed.Default()
	}
	return seed.LoadFile(file)
}
