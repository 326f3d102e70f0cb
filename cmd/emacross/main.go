package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rxtech-lab/ema-cross/internal/config"
	"github.com/rxtech-lab/ema-cross/internal/logger"
	"github.com/rxtech-lab/ema-cross/internal/metrics"
	"github.com/rxtech-lab/ema-cross/internal/runner"
	"github.com/rxtech-lab/ema-cross/internal/types"
	"github.com/rxtech-lab/ema-cross/internal/version"
	"github.com/rxtech-lab/ema-cross/internal/writer"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// loadApp reads the settings file named by the global flags and builds the app.
func loadApp(cmd *cli.Command) (*app, error) {
	settings, err := config.Load(cmd.String("settings"))
	if err != nil {
		return nil, err
	}

	level := settings.LogLevel
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}

	log, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return newApp(settings, log)
}

// runAction polls every symbol until interrupted.
func runAction(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	defer a.logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.settings.Metrics.Enabled {
		server := metrics.NewServer(a.metrics, a.health, a.logger)
		if err := server.Start(a.settings.Metrics.Address); err != nil {
			return err
		}

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := server.Stop(shutdownCtx); err != nil {
				a.logger.Warn("Failed to stop metrics server", zap.Error(err))
			}
		}()
	}

	a.logger.Info("Starting ema-cross",
		zap.String("version", version.GetVersion()),
		zap.Strings("symbols", a.settings.Symbols),
		zap.String("timeframe", a.settings.Timeframe),
		zap.String("comment", a.runner.Comment()),
	)

	return a.runner.Run(ctx)
}

// onceAction runs a single cycle and prints what it did.
func onceAction(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	report := a.runner.RunOnce(ctx)
	printReport(os.Stdout, report)

	if report.Failures() == len(report.Symbols) && len(report.Symbols) > 0 {
		return fmt.Errorf("all %d symbols failed", len(report.Symbols))
	}

	return nil
}

// scanAction writes the indicator table of every symbol without trading.
func scanAction(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	report := a.runner.Scan(ctx)
	printReport(os.Stdout, report)

	return nil
}

// downloadAction saves the latest closed candles of each symbol to <output>/<symbol>.<format>.
func downloadAction(ctx context.Context, cmd *cli.Command) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	symbols := a.settings.Symbols
	if cmd.IsSet("symbol") {
		symbols = cmd.StringSlice("symbol")
	}

	count := a.settings.CandleCount
	if cmd.IsSet("count") {
		count = int(cmd.Int("count"))
	}

	format := types.FileFormat(cmd.String("format"))
	if !format.IsValid() {
		return fmt.Errorf("unsupported format: %s", format)
	}

	timeframe, err := a.settings.TimeframeValue()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cmd.String("output"), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	bar := progressbar.NewOptions(len(symbols), progressbar.OptionSetDescription("Downloading candles"), progressbar.OptionShowCount())

	for _, symbol := range symbols {
		candles, err := a.provider.GetCandles(ctx, symbol, timeframe, count)
		if err != nil {
			return fmt.Errorf("download of %s failed: %w", symbol, err)
		}

		path := filepath.Join(cmd.String("output"), symbol+"."+format.Extension())
		if err := saveCandles(path, format, candles, a.logger); err != nil {
			return err
		}

		_ = bar.Add(1)
	}

	log.Println("Download completed successfully.")

	return nil
}

func saveCandles(path string, format types.FileFormat, candles []types.Candle, log *logger.Logger) error {
	w := writer.NewCandleWriter(path, format, log)
	defer w.Close()

	if err := w.Initialize(); err != nil {
		return err
	}

	if err := w.WriteAll(candles); err != nil {
		return err
	}

	_, err := w.Finalize()

	return err
}

// schemaAction prints the JSON schema of the settings file.
func schemaAction(_ context.Context, _ *cli.Command) error {
	schema, err := config.GenerateSchemaJSON()
	if err != nil {
		return err
	}

	fmt.Println(schema)

	return nil
}

func printReport(out io.Writer, report runner.CycleReport) {
	for _, s := range report.Symbols {
		switch {
		case s.Err != nil:
			fmt.Fprintf(out, "%s\tfailed\t%v\n", s.Symbol, s.Err)
		case s.Order.IsSome():
			order := s.Order.Unwrap()
			fmt.Fprintf(out, "%s\t%s\tvolume=%g stop=%g sl=%g tp=%g status=%s\n",
				s.Symbol, order.Type, order.Volume, order.StopPrice, order.StopLoss, order.TakeProfit, order.Status)
		case s.Crossed:
			fmt.Fprintf(out, "%s\tcrossed\t%s\n", s.Symbol, s.TablePath)
		default:
			fmt.Fprintf(out, "%s\tno signal\n", s.Symbol)
		}
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "ema-cross",
		Usage:   "Place stop-entry orders when two EMAs cross",
		Version: version.GetVersion(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "settings",
				Aliases: []string{"s"},
				Usage:   "Path to the settings file",
				Value:   "settings.yaml",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the log level of the settings file (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Poll every symbol and place orders until interrupted",
				Action: runAction,
			},
			{
				Name:   "once",
				Usage:  "Run a single cycle and exit",
				Action: onceAction,
			},
			{
				Name:   "scan",
				Usage:  "Write the indicator table of every symbol without placing orders",
				Action: scanAction,
			},
			{
				Name:  "download",
				Usage: "Save the latest closed candles of each symbol",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "symbol",
						Usage: "Symbols to download. Defaults to the symbols of the settings file",
					},
					&cli.IntFlag{
						Name:  "count",
						Usage: "Number of candles. Defaults to candle_count",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   config.DefaultOutputDir,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "File format (parquet, csv)",
						Value: string(types.FileFormatParquet),
					},
				},
				Action: downloadAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the settings file",
				Action: schemaAction,
			},
		},
	}
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
