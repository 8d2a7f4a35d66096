// Command arithflowd runs the HTTP front door described in SPEC_FULL.md
// §4.10: it parses and compiles incoming expressions and hands the
// resulting workflow to a coordinator backed by either the in-memory
// transport or a RabbitMQ/Redis pair, depending on configuration.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arithflow/arithflow/internal/broker"
	"github.com/arithflow/arithflow/internal/config"
	"github.com/arithflow/arithflow/internal/coordinator"
	"github.com/arithflow/arithflow/internal/httpapi"
	"github.com/arithflow/arithflow/internal/logging"
)

func main() {
	var (
		addr       string
		brokerURL  string
		backendURL string
		deadline   time.Duration
	)

	rootCmd := &cobra.Command{
		Use:           "arithflowd",
		Short:         "Serve the arithflow HTTP calculate endpoint",
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(addr, brokerURL, backendURL, deadline)
		},
	}

	rootCmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides HTTP_ADDR)")
	rootCmd.Flags().StringVar(&brokerURL, "broker-url", "", "Broker URL, e.g. amqp://... (overrides BROKER_URL)")
	rootCmd.Flags().StringVar(&backendURL, "backend-url", "", "Result backend URL, e.g. redis://... (overrides RESULT_BACKEND_URL)")
	rootCmd.Flags().DurationVar(&deadline, "deadline", 0, "Per-request execution deadline (overrides REQUEST_DEADLINE)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(addrFlag, brokerFlag, backendFlag string, deadlineFlag time.Duration) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	if addrFlag != "" {
		cfg.HTTPAddr = addrFlag
	}
	if brokerFlag != "" {
		cfg.BrokerURL = brokerFlag
	}
	if backendFlag != "" {
		cfg.ResultBackendURL = backendFlag
	}
	if deadlineFlag > 0 {
		cfg.RequestDeadline = deadlineFlag
	}

	logging.Setup(cfg.LogLevel)

	b, rb, closeFn, err := dial(cfg)
	if err != nil {
		return errors.Wrap(err, "dialing broker/backend")
	}
	defer closeFn()

	coord := coordinator.New(b, rb)
	coord.Deadline = cfg.RequestDeadline

	srv := &httpapi.Server{Coordinator: coord, Deadline: cfg.RequestDeadline}
	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.NewRouter()}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", cfg.HTTPAddr).Info("arithflowd listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		logrus.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(ctx)
	}
}

// dial selects the in-memory transport when no URL is configured, or the
// RabbitMQ/Redis pair when both are (spec §4.6); configuring only one of
// the two URLs is an error.
func dial(cfg *config.Config) (broker.Broker, broker.ResultBackend, func(), error) {
	if cfg.BrokerURL == "" && cfg.ResultBackendURL == "" {
		b, rb := broker.NewMemory()
		return b, rb, func() {}, nil
	}
	if cfg.BrokerURL == "" || cfg.ResultBackendURL == "" {
		return nil, nil, nil, errors.New("BROKER_URL and RESULT_BACKEND_URL must be set together")
	}

	amqpConn, err := broker.DialAMQP(cfg.BrokerURL)
	if err != nil {
		return nil, nil, nil, err
	}
	redisConn, err := broker.DialRedis(cfg.ResultBackendURL)
	if err != nil {
		amqpConn.Close()
		return nil, nil, nil, err
	}

	closeFn := func() {
		amqpConn.Close()
		redisConn.Close()
	}
	return amqpConn, redisConn, closeFn, nil
}
