package commands

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sterling-dev/sterling/internal/rates"
)

func newRateCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rate <currency> <date>",
		Short: "Look up the GBP rate for a currency on a date (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRate(cmd.Context(), args[0], args[1], configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "sterling.yaml", "config file")

	return cmd
}

func runRate(ctx context.Context, currency, date, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	resolver := rates.NewResolver(cfg.Rates.BaseURL, &http.Client{
		Timeout: time.Duration(cfg.Rates.TimeoutSeconds) * time.Second,
	})

	rate, err := resolver.ResolveDate(ctx, currency, date)
	if err != nil {
		return err
	}

	fmt.Printf("1 %s = %s GBP on %s\n", strings.ToUpper(strings.TrimSpace(currency)), rate.String(), date)
	return nil
}
