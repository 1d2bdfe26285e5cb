// Command storefront is a small CLI that drives a client session against
// a storefront API, mainly for poking at a dev server end to end.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tiendasuplementacion/storefront/internal/config"
	"github.com/tiendasuplementacion/storefront/internal/gateway"
	"github.com/tiendasuplementacion/storefront/internal/session"
)

var (
	flagConfig   string
	flagBaseURL  string
	flagUsername string
	flagPassword string
)

func main() {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront API client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "API base URL (overrides config)")
	root.PersistentFlags().StringVar(&flagUsername, "username", "demo", "login username")
	root.PersistentFlags().StringVar(&flagPassword, "password", "demo", "login password")

	root.AddCommand(productsCmd(), paymentDetailsCmd(), demoCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if gateway.IsNetwork(err) {
			fmt.Fprintln(os.Stderr, "the server looks unreachable, try again")
		}
		os.Exit(1)
	}
}

func newSession(ctx context.Context) (*session.Session, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		return nil, err
	}

	gw := gateway.NewClient(cfg.BaseURL, log,
		gateway.WithTimeout(cfg.Timeout),
		gateway.WithBreakerSettings(cfg.Breaker.FailureThreshold, cfg.Breaker.OpenTimeout))

	sess := session.New(gw, log)
	if _, err := sess.Login(ctx, flagUsername, flagPassword); err != nil {
		return nil, err
	}
	return sess, nil
}

func productsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the product catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			sess, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Logout()

			if err := sess.Products.FetchAll(ctx); err != nil {
				return err
			}
			for _, p := range sess.Products.Data().Get() {
				fmt.Printf("%4d  %-30s  $%s  stock=%d\n", p.ID, p.Name, p.Price.StringFixed(2), p.Stock)
			}
			return nil
		},
	}
}

func paymentDetailsCmd() *cobra.Command {
	var userID int64
	cmd := &cobra.Command{
		Use:   "payment-details",
		Short: "List a user's saved payment details",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			sess, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Logout()

			if userID == 0 {
				if u, ok := sess.CurrentUser(); ok {
					userID = u.ID
				}
			}
			if err := sess.FetchPaymentDetails(ctx, userID); err != nil {
				return err
			}
			for _, d := range sess.PaymentDetails.Data().Get() {
				fmt.Printf("%4d  payment=%d  card=%s  %s, %s\n", d.ID, d.PaymentID, d.CardNumber, d.AddressLine1, d.City)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id (defaults to the logged-in user)")
	return cmd
}

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run an end-to-end browse, cart and checkout flow",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			sess, err := newSession(ctx)
			if err != nil {
				return err
			}
			defer sess.Logout()

			if err := sess.Products.FetchAll(ctx); err != nil {
				return err
			}

			for _, p := range sess.Products.Data().Get() {
				if err := sess.Cart.AddToCart(p); err != nil {
					fmt.Printf("skipping %q: %v\n", p.Name, err)
				}
			}
			state := sess.Cart.State().Get()
			fmt.Printf("cart: %d items, total $%s\n", state.TotalItemCount, state.TotalPrice.StringFixed(2))

			order, err := sess.Checkout(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("order %d placed, status %s, total $%s\n", order.ID, order.Status, order.Total.StringFixed(2))
			return nil
		},
	}
}
