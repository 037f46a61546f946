package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sterling-dev/sterling/internal/config"
	"github.com/sterling-dev/sterling/internal/importer"
	"github.com/sterling-dev/sterling/internal/logger"
	"github.com/sterling-dev/sterling/internal/rates"
	"github.com/sterling-dev/sterling/internal/reviewlog"
	"github.com/sterling-dev/sterling/internal/statement"
)

func newConvertCommand() *cobra.Command {
	var output string
	var format string
	var configPath string

	cmd := &cobra.Command{
		Use:   "convert <input.csv>",
		Short: "Convert a bank CSV export into a normalized GBP statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.Context(), args[0], output, format, configPath)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV file (default: input stem + configured suffix)")
	cmd.Flags().StringVar(&format, "format", "revolut", "input export format")
	cmd.Flags().StringVar(&configPath, "config", "sterling.yaml", "config file")

	return cmd
}

func runConvert(ctx context.Context, inputPath, outputPath, format, configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if outputPath == "" {
		outputPath = defaultOutputPath(inputPath, cfg.Output.Suffix)
	}

	parser := importer.DefaultRegistry().Get(format)
	if parser == nil {
		return fmt.Errorf("unknown input format %q", format)
	}

	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inputPath, err)
	}
	defer in.Close()

	txns, err := parser.Parse(in)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", inputPath, err)
	}

	log := logger.New()
	resolver := rates.NewResolver(cfg.Rates.BaseURL, &http.Client{
		Timeout: time.Duration(cfg.Rates.TimeoutSeconds) * time.Second,
	})
	transformer := statement.NewTransformer(resolver, log)

	records, degraded := transformer.Transform(ctx, txns)

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outputPath, err)
	}
	defer out.Close()

	if err := statement.WriteRecords(out, records); err != nil {
		return fmt.Errorf("writing %s: %w", outputPath, err)
	}

	if len(degraded) > 0 {
		entries := make([]reviewlog.Entry, len(degraded))
		for i, d := range degraded {
			entries[i] = reviewlog.Entry{
				Date:        d.Date,
				Description: d.Description,
				Amount:      d.Amount,
				Reason:      d.Reason,
			}
		}
		path := reviewPath(outputPath)
		if err := reviewlog.Append(path, entries); err != nil {
			return fmt.Errorf("writing review log: %w", err)
		}
		log.Warn().
			Int("rows", len(degraded)).
			Str("review_log", path).
			Msg("some rows have a 0.00 GBP amount and need manual review")
	}

	fmt.Printf("Processed %d transactions\n", len(records))
	fmt.Printf("Output written to: %s\n", outputPath)
	return nil
}

// loadConfig reads configPath, falling back to defaults when the file does
// not exist.
func loadConfig(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultOutputPath derives <dir>/<stem><suffix>.csv from the input path.
func defaultOutputPath(inputPath, suffix string) string {
	dir := filepath.Dir(inputPath)
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+suffix+".csv")
}

// reviewPath derives the review-log path from the output path.
func reviewPath(outputPath string) string {
	ext := filepath.Ext(outputPath)
	return strings.TrimSuffix(outputPath, ext) + "_review" + ext
}
