// Command arithworker consumes task envelopes from the broker's physical
// queues, runs the matching worker contract, and publishes the reply to
// the result backend (SPEC_FULL.md §4.10). It has no meaning against the
// in-memory transport, whose Broker dispatches contracts directly; it is
// only useful with --broker-url/--backend-url pointed at real transports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/arithflow/arithflow/internal/broker"
	"github.com/arithflow/arithflow/internal/config"
	"github.com/arithflow/arithflow/internal/logging"
	"github.com/arithflow/arithflow/internal/worker"
	"github.com/arithflow/arithflow/internal/workflow"
)

func main() {
	var (
		brokerURL  string
		backendURL string
		topics     string
	)

	rootCmd := &cobra.Command{
		Use:           "arithworker",
		Short:         "Consume arithflow task queues and execute worker contracts",
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(brokerURL, backendURL, topics)
		},
	}

	rootCmd.Flags().StringVar(&brokerURL, "broker-url", "", "Broker URL, e.g. amqp://... (overrides BROKER_URL)")
	rootCmd.Flags().StringVar(&backendURL, "backend-url", "", "Result backend URL, e.g. redis://... (overrides RESULT_BACKEND_URL)")
	rootCmd.Flags().StringVar(&topics, "queues", strings.Join(broker.Queues, ","), "Comma-separated list of physical queues to consume")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(brokerFlag, backendFlag, queuesFlag string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	if brokerFlag != "" {
		cfg.BrokerURL = brokerFlag
	}
	if backendFlag != "" {
		cfg.ResultBackendURL = backendFlag
	}
	logging.Setup(cfg.LogLevel)

	if cfg.BrokerURL == "" || cfg.ResultBackendURL == "" {
		return errors.New("arithworker requires BROKER_URL and RESULT_BACKEND_URL (the in-memory transport dispatches in-process and needs no worker)")
	}

	b, err := broker.DialAMQP(cfg.BrokerURL)
	if err != nil {
		return errors.Wrap(err, "dialing broker")
	}
	defer b.Close()

	rb, err := broker.DialRedis(cfg.ResultBackendURL)
	if err != nil {
		return errors.Wrap(err, "dialing result backend")
	}
	defer rb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logrus.Info("shutting down worker pool")
		cancel()
	}()

	queues := strings.Split(queuesFlag, ",")
	var wg sync.WaitGroup
	for _, q := range queues {
		q := strings.TrimSpace(q)
		if q == "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumeQueue(ctx, b, rb, q)
		}()
	}
	wg.Wait()
	return nil
}

func consumeQueue(ctx context.Context, b *broker.AMQPBroker, rb *broker.RedisResultBackend, queue string) {
	log := logrus.WithField("queue", queue)
	deliveries, err := b.Consume(ctx, queueTopic(queue))
	if err != nil {
		log.WithError(err).Error("failed to consume queue")
		return
	}
	log.Info("consuming queue")
	for env := range deliveries {
		env := env
		go func() {
			v, err := worker.Dispatch(env)
			reply := worker.NewReply(env.CorrID, v, err)
			if err := rb.Publish(ctx, reply); err != nil {
				log.WithError(err).WithField("corr_id", env.CorrID).Error("failed to publish result")
			}
		}()
	}
}

// queueTopic maps a physical queue name back to a representative logical
// Topic for AMQPBroker.Consume, which only needs it to re-derive the
// physical queue name (queueOf is its own inverse for the four physical
// queues: xsum/xprod share add/mul's queue and are never consumed
// directly).
func queueTopic(queue string) workflow.Topic {
	return workflow.Topic(queue)
}
