package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock-predictor/src/server"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "stock-predictor",
		Short:         "Stock Predictor - market data, indicators and price forecasts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (defaults are used when empty)")

	rootCmd.AddCommand(newServeCmd(&configPath))
	rootCmd.AddCommand(newPredictCmd(&configPath))
	rootCmd.AddCommand(newIndicatorsCmd(&configPath))

	return rootCmd
}

// -----------------------------------------------------------------------------

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			scheduler, err := app.StartMaintenance(ctx)
			if err != nil {
				return err
			}
			if scheduler != nil {
				defer scheduler.Stop()
			}

			srv := server.NewAPIServer(app.Config.MConfig, app.Service, app.Memory, app.Logger)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			app.Logger.Info("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}
}

// -----------------------------------------------------------------------------

func newPredictCmd(configPath *string) *cobra.Command {
	var (
		method string
		days   int
	)

	cmd := &cobra.Command{
		Use:   "predict [TICKER]",
		Short: "Forecast closing prices for a ticker",
		Long: `Forecast closing prices with the regression or the LSTM model.
Example: stock-predictor predict AAPL --method lstm --days 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			switch method {
			case "linear":
				result, err := app.Service.PredictLinear(cmd.Context(), args[0], days)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			case "lstm":
				result, err := app.Service.PredictLSTM(cmd.Context(), args[0], days)
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			default:
				return fmt.Errorf("unknown method %q (linear or lstm)", method)
			}
		},
	}

	cmd.Flags().StringVar(&method, "method", "linear", "forecast model: linear or lstm")
	cmd.Flags().IntVar(&days, "days", 7, "number of days to forecast")
	return cmd
}

// -----------------------------------------------------------------------------

func newIndicatorsCmd(configPath *string) *cobra.Command {
	var period string

	cmd := &cobra.Command{
		Use:   "indicators [TICKER]",
		Short: "Show the latest technical indicators for a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(*configPath)
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Service.Indicators(cmd.Context(), args[0], period)
			if err != nil {
				return err
			}
			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&period, "period", "6mo", "history period (1mo, 6mo, 1y, 180d, ...)")
	return cmd
}

// -----------------------------------------------------------------------------

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
