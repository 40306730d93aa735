package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newFAQsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "faqs",
		Short: "List stored FAQs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			shop, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer shop.Close()

			faqs, err := shop.DB.ListFAQs(ctx)
			if err != nil {
				return fmt.Errorf("list faqs: %w", err)
			}

			if c.outputJSON {
				type row struct {
					ID       int64  `json:"id"`
					Question string `json:"question"`
					Category string `json:"category"`
					Keywords string `json:"keywords"`
					Active   bool   `json:"active"`
				}
				rows := make([]row, 0, len(faqs))
				for _, f := range faqs {
					rows = append(rows, row{f.ID, f.Question, f.Category, f.Keywords, f.IsActive})
				}
				return c.printJSON(cmd.OutOrStdout(), rows)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCATEGORY\tACTIVE\tQUESTION")
			for _, f := range faqs {
				fmt.Fprintf(w, "%d\t%s\t%t\t%s\n", f.ID, f.Category, f.IsActive, f.Question)
			}
			return w.Flush()
		},
	}
}
