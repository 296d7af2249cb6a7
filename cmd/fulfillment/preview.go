package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/email"
	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/fulfillment"
	"github.com/mixedbysoda-stack/carbonator-fulfillment/internal/release"
	stripeinternal "github.com/mixedbysoda-stack/carbonator-fulfillment/internal/stripe"
)

func previewEmailCmd() *cobra.Command {
	var (
		to          string
		amountCents int64
		orderID     string
		version     string
		year        int
	)

	cmd := &cobra.Command{
		Use:   "preview-email",
		Short: "Render the download email to stdout",
		Long: `Render the download email exactly as a buyer would receive it.
Nothing is sent.

Examples:
  carbonator-fulfillment preview-email --email buyer@example.com --amount 2000 > preview.html
  carbonator-fulfillment preview-email --version 2.3.0-beta`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := release.ForVersion(version)
			if err != nil {
				return err
			}
			if year == 0 {
				year = time.Now().Year()
			}

			amount := fulfillment.FormatAmount(stripeinternal.CheckoutSession{
				AmountTotal:    amountCents,
				HasAmountTotal: amountCents != 0,
			})

			html, err := email.RenderDownloadEmail(catalog, email.DownloadEmailData{
				Email:      to,
				AmountPaid: amount,
				OrderID:    orderID,
				Year:       year,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), html)
			return err
		},
	}

	cmd.Flags().StringVar(&to, "email", "buyer@example.com", "recipient shown in the receipt")
	cmd.Flags().Int64Var(&amountCents, "amount", 0, "amount_total in cents (0 uses the fallback amount)")
	cmd.Flags().StringVar(&orderID, "order", "cs_test_preview", "order id shown in the receipt")
	cmd.Flags().StringVar(&version, "version", release.DefaultVersion, "release version to link")
	cmd.Flags().IntVar(&year, "year", 0, "footer year (default: current year)")

	return cmd
}

func releaseCmd() *cobra.Command {
	var (
		version string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "release",
		Short: "Print the release version and download URLs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := release.ForVersion(version)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"version":   catalog.Version(),
					"downloads": catalog.Downloads(),
				})
			}

			fmt.Fprintf(out, "version: %s\n", catalog.Version())
			for _, p := range release.Platforms {
				fmt.Fprintf(out, "%-8s %s\n", p+":", catalog.URL(p))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", release.DefaultVersion, "release version")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")

	return cmd
}
