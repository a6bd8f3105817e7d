package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"cinema-cli/metrics"
	"cinema-cli/workflow"

	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	var station bool
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "validate [code]",
		Short: "Validate a ticket at the door",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !station {
				if len(args) != 1 {
					return fmt.Errorf("a booking code is required (or use --station)")
				}
				return validateOne(args[0])
			}

			if metricsAddr == "" && cfg.Metrics.Enabled {
				metricsAddr = cfg.Metrics.Address
			}
			if metricsAddr != "" {
				stop := serveMetrics(metricsAddr)
				defer stop()
			}

			fmt.Fprintln(os.Stderr, "Scan or type booking codes, one per line. Ctrl-D to finish.")
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				code := strings.TrimSpace(scanner.Text())
				if code == "" {
					continue
				}
				if err := validateOne(code); err != nil && !errors.Is(err, errReported) {
					fmt.Fprintln(os.Stderr, "Error:", err)
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().BoolVar(&station, "station", false, "Read codes from stdin until EOF")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while in station mode")
	return cmd
}

func validateOne(code string) error {
	ctx, cancel := requestContext()
	defer cancel()

	result, err := service.ValidateBooking(ctx, strings.TrimSpace(code))
	if err != nil {
		metrics.IncValidation("rejected")
	} else {
		metrics.IncValidation("ok")
		recordTicket(result.Booking, sourceValidation)
	}
	return emit(result, err, func(v workflow.Validation) error {
		printDegraded(v.Degraded)
		b := v.Booking
		fmt.Printf("VALID %s | %s | seats %s\n", strings.ToUpper(b.ID), b.StudioName, strings.Join(b.Seats, ", "))
		if b.UserName != "" {
			fmt.Printf("Customer: %s\n", b.UserName)
		}
		if v.Message != "" {
			fmt.Println(v.Message)
		}
		return nil
	})
}

func serveMetrics(addr string) func() {
	metrics.Register()
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server")
		}
	}()
	logger.Info().Str("addr", addr).Msg("serving metrics")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
