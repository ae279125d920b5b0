package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/artpar/shelf/internal/core"
	"github.com/artpar/shelf/internal/logging"
	"github.com/artpar/shelf/internal/remote"
)

// CartOptions holds options for the cart commands.
type CartOptions struct {
	JSON bool
}

// NewCartCommand creates the cart command and its subcommands.
func NewCartCommand(root *rootOptions) *cobra.Command {
	opts := &CartOptions{}

	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect or change the cart without the TUI",
	}
	cmd.PersistentFlags().BoolVar(&opts.JSON, "json", false, "Output response as JSON")

	cmd.AddCommand(&cobra.Command{
		Use:   "add ID",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartMutation(cmd, root, opts, core.ProductID(args[0]), false)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "remove ID",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartMutation(cmd, root, opts, core.ProductID(args[0]), true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartList(cmd, root, opts)
		},
	})

	return cmd
}

func cartClient(root *rootOptions) (*remote.Client, error) {
	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	return newClient(cfg, logging.Discard())
}

func runCartMutation(cmd *cobra.Command, root *rootOptions, opts *CartOptions, id core.ProductID, remove bool) error {
	client, err := cartClient(root)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var result remote.CartResult
	if remove {
		result, err = client.RemoveFromCart(ctx, id)
	} else {
		result, err = client.AddToCart(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if opts.JSON {
		return outputJSON(cmd, result)
	}

	out := cmd.OutOrStdout()
	message := result.Message
	if message == "" {
		message = result.Status
	}
	fmt.Fprintf(out, "%s (%s)\n", message, id)
	fmt.Fprintf(out, "Cart: %d\n", result.CartCount)
	return nil
}

func runCartList(cmd *cobra.Command, root *rootOptions, opts *CartOptions) error {
	client, err := cartClient(root)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	contents, err := client.Cart(ctx)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	if opts.JSON {
		return outputJSON(cmd, contents)
	}

	out := cmd.OutOrStdout()
	if len(contents.Items) == 0 {
		fmt.Fprintln(out, "Cart is empty")
		return nil
	}
	for _, item := range contents.Items {
		fmt.Fprintf(out, "  %-4s %-40s ₹%s\n", item.ID, item.Title, formatPrice(item.Price))
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Items: %d\n", contents.CartCount)
	fmt.Fprintf(out, "Total: ₹%s\n", formatPrice(contents.Total))
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}
