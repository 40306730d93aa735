package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shoppit/backend/internal/chatbot"
)

func newAskCmd(c *cli) *cobra.Command {
	var session string

	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message to the chatbot",
		Long: `Ask runs a message through the full chatbot pipeline against the configured
record store. Pass --session to continue an earlier conversation, for example
to follow up on a product listing with "el segundo".`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			shop, err := c.open(ctx)
			if err != nil {
				return err
			}
			defer shop.Close()

			// An empty FAQ index still answers everything else.
			_ = shop.LoadFAQs(ctx)

			resp := shop.Chatbot.ProcessMessage(ctx, chatbot.Request{
				Message:   strings.Join(args, " "),
				SessionID: session,
			})

			if c.outputJSON {
				return c.printJSON(cmd.OutOrStdout(), map[string]any{
					"response":           resp.Response,
					"session_id":         resp.SessionID,
					"suggested_products": resp.SuggestedProducts,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resp.Response)
			fmt.Fprintf(out, "\nsession: %s\n", resp.SessionID)
			if len(resp.SuggestedProducts) > 0 {
				fmt.Fprintf(out, "products: %v\n", resp.SuggestedProducts)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", "", "session id to continue")

	return cmd
}
