package main

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/grass-estimator/internal/pricing"
)

var quoteArea float64

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price a known lawn area without uploading photos",
	RunE: func(cmd *cobra.Command, args []string) error {
		if quoteArea < 0 {
			return eris.New("--area must not be negative")
		}

		formatter, err := initFormatter()
		if err != nil {
			return err
		}

		rate := pricing.NewCache(initPricing()).Rate(cmd.Context())
		writeQuote(cmd.OutOrStdout(), quoteArea, rate, formatter)
		return nil
	},
}

var pricingCmd = &cobra.Command{
	Use:   "pricing",
	Short: "Load and print the configured price per square metre",
	RunE: func(cmd *cobra.Command, args []string) error {
		formatter, err := initFormatter()
		if err != nil {
			return err
		}

		cache := pricing.NewCache(initPricing())
		rate := cache.Rate(cmd.Context())
		out := cmd.OutOrStdout()
		if rate == nil {
			fmt.Fprintln(out, "pricing unavailable")
			if cache.Err() != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), cache.Err())
			}
			return nil
		}
		fmt.Fprintf(out, "Rate:      %s per m²\n", formatter.Format(rate))
		return nil
	},
}

func writeQuote(w io.Writer, area float64, rate *float64, f *pricing.Formatter) {
	fmt.Fprintf(w, "Area:      %s m²\n", f.Number(area))
	price := pricing.Price(&area, rate)
	if price == nil {
		fmt.Fprintln(w, "Price:     unavailable")
		return
	}
	fmt.Fprintf(w, "Price:     %s\n", f.Format(price))
}

func init() {
	quoteCmd.Flags().Float64Var(&quoteArea, "area", 0, "lawn area in square metres")
	_ = quoteCmd.MarkFlagRequired("area")
	rootCmd.AddCommand(quoteCmd, pricingCmd)
}
