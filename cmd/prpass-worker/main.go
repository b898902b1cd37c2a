// prpass-worker executes queued derivation jobs for prpass clients.
//
// It serves the Redis list used by executor/redisqueue, running each job on a bounded
// pool. With --embedded it starts an in-process miniredis instead of dialing a server,
// which is handy for local testing. --metrics-addr serves job counters and latency
// histograms in Prometheus format.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"github.com/tink-crypto/tink-go/v2/tink"

	"github.com/MrEthical07/prpass/executor"
	"github.com/MrEthical07/prpass/executor/redisqueue"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		redisAddr   string
		embedded    bool
		concurrency int
		prefix      string
		resultTTL   time.Duration
		keysetPath  string
		newKeyset   string
		logLevel    string
		metricsAddr string
		slowLimit   int
		slowWindow  time.Duration
	)

	flagSet := pflag.NewFlagSet("prpass-worker", pflag.ContinueOnError)
	flagSet.StringVar(&redisAddr, "redis-addr", "", "redis address; if empty, REDIS_ADDR env is used")
	flagSet.BoolVar(&embedded, "embedded", false, "serve an in-process miniredis instead of dialing redis")
	flagSet.IntVarP(&concurrency, "concurrency", "j", runtime.NumCPU(), "jobs executed in parallel")
	flagSet.StringVar(&prefix, "prefix", redisqueue.DefaultPrefix, "queue key prefix")
	flagSet.DurationVar(&resultTTL, "result-ttl", redisqueue.DefaultResultTTL, "lifetime of unread results")
	flagSet.StringVar(&keysetPath, "aead-keyset", "", "cleartext Tink keyset sealing queued jobs")
	flagSet.StringVar(&newKeyset, "new-keyset", "", "write a fresh AES-256-GCM keyset to this path and exit")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flagSet.StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics at /metrics on this address")
	flagSet.IntVar(&slowLimit, "slow-job-limit", 0, "slow-tier jobs accepted per window across all workers; 0 disables")
	flagSet.DurationVar(&slowWindow, "slow-job-window", time.Minute, "window for --slow-job-limit")

	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if concurrency <= 0 {
		return errors.New("concurrency must be > 0")
	}
	if slowLimit < 0 {
		return errors.New("slow-job-limit must be >= 0")
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

	if newKeyset != "" {
		return writeNewKeyset(newKeyset)
	}

	var aead tink.AEAD
	if keysetPath != "" {
		var err error
		if aead, err = readKeyset(keysetPath); err != nil {
			return err
		}
	}

	client, cleanup, err := dial(redisAddr, embedded, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	jobs := newJobMetrics()
	if metricsAddr != "" {
		_, shutdown, err := serveMetrics(metricsAddr, jobs, logger)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	pool := executor.NewPool(concurrency)
	defer pool.Close()

	worker := redisqueue.NewWorker(client, pool, redisqueue.Options{
		Prefix:        prefix,
		ResultTTL:     resultTTL,
		AEAD:          aead,
		SlowJobLimit:  slowLimit,
		SlowJobWindow: slowWindow,
		OnJob:         jobs.record,
		Logger:        logger,
	})

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := worker.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("worker stopped", slog.Any("error", err))
			}
		}()
	}
	wg.Wait()

	if err := logTotals(context.Background(), jobs, logger); err != nil {
		logger.Warn("job totals unavailable", slog.Any("error", err))
	}
	logger.Info("shutdown complete")
	return nil
}

func dial(addr string, embedded bool, logger *slog.Logger) (redis.UniversalClient, func(), error) {
	if embedded {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{mr.Addr()},
		})
		logger.Info("using miniredis", slog.String("addr", mr.Addr()))
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		return nil, nil, errors.New("--redis-addr, REDIS_ADDR or --embedded is required")
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	logger.Info("using redis", slog.String("addr", addr))
	return client, func() { _ = client.Close() }, nil
}

func readKeyset(path string) (tink.AEAD, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open keyset: %w", err)
	}
	defer f.Close()
	return redisqueue.ReadAEAD(f)
}

func writeNewKeyset(path string) error {
	h, err := redisqueue.NewKeyset()
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create keyset: %w", err)
	}
	if err := redisqueue.WriteKeyset(h, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
