package redisqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/prpass/internal/codec"
	"github.com/MrEthical07/prpass/internal/rate"
	"github.com/MrEthical07/prpass/kdf"
	"github.com/redis/go-redis/v9"
)

// Runner executes a decoded job. executor.Inline and *executor.Pool satisfy it.
type Runner interface {
	Execute(ctx context.Context, job kdf.Job) ([]byte, error)
}

// Worker pops queued jobs, runs them and publishes the results.
type Worker struct {
	redis   redis.UniversalClient
	opts    Options
	runner  Runner
	limiter *rate.Limiter
}

// NewWorker returns a worker that runs jobs through runner.
func NewWorker(client redis.UniversalClient, runner Runner, opts Options) *Worker {
	opts = opts.withDefaults()
	return &Worker{
		redis:  client,
		opts:   opts,
		runner: runner,
		limiter: rate.New(client, rate.Config{
			Limit:  opts.SlowJobLimit,
			Window: opts.SlowJobWindow,
		}),
	}
}

// Serve processes jobs until ctx ends, then returns ctx.Err().
func (w *Worker) Serve(ctx context.Context) error {
	w.opts.Logger.Info("worker started", slog.String("queue", jobsKey(w.opts.Prefix)), slog.Bool("sealed", w.opts.AEAD != nil))
	for {
		if _, err := w.ProcessOne(ctx); err != nil {
			if ctx.Err() != nil {
				w.opts.Logger.Info("worker stopped")
				return ctx.Err()
			}
			w.opts.Logger.Error("job processing failed", slog.Any("error", err))
			select {
			case <-time.After(w.opts.PollTimeout):
			case <-ctx.Done():
			}
		}
	}
}

// ProcessOne waits up to the poll timeout for one job. It reports whether a job was
// taken. Job failures are sent to the submitting client and do not return an error;
// only queue and transport failures do.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	res, err := w.redis.BLPop(ctx, w.opts.PollTimeout, jobsKey(w.opts.Prefix)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("pop job: %w", err)
	}

	var env envelope
	if err := codec.Unmarshal([]byte(res[1]), &env); err != nil || env.ID == "" {
		w.opts.Logger.Warn("dropping malformed envelope")
		return true, nil
	}

	r := w.handle(ctx, env)
	data, err := codec.Marshal(r)
	wipe(r.Payload)
	if err != nil {
		return true, err
	}

	key := resultKey(w.opts.Prefix, env.ID)
	pipe := w.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, w.opts.ResultTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, fmt.Errorf("publish result %s: %w", env.ID, err)
	}
	return true, nil
}

func (w *Worker) report(tier kdf.Tier, elapsed time.Duration, err error) {
	if w.opts.OnJob != nil {
		w.opts.OnJob(tier, elapsed, err)
	}
}

func (w *Worker) handle(ctx context.Context, env envelope) reply {
	fail := func(err error) reply {
		w.opts.Logger.Warn("job rejected", slog.String("id", env.ID), slog.Any("error", err))
		return reply{ID: env.ID, Error: err.Error()}
	}

	encoded, err := open(w.opts.AEAD, env.Payload, env.Sealed, env.ID)
	if err != nil {
		return fail(err)
	}
	var job kdf.Job
	err = job.UnmarshalBinary(encoded)
	wipe(encoded)
	if err != nil {
		return fail(err)
	}
	defer job.Wipe()

	if job.Tier == kdf.TierSlow {
		if err := w.limiter.Allow(ctx, rateKey(w.opts.Prefix, job.Tier)); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				err = ErrRateLimited
			}
			w.report(job.Tier, 0, err)
			return fail(err)
		}
	}

	start := time.Now()
	out, err := w.runner.Execute(ctx, job)
	w.report(job.Tier, time.Since(start), err)
	if err != nil {
		return fail(err)
	}
	w.opts.Logger.Debug("job executed", slog.String("id", env.ID), slog.String("algorithm", job.Algorithm), slog.String("tier", job.Tier.String()))

	payload, sealed, err := seal(w.opts.AEAD, out, env.ID)
	if sealed {
		wipe(out)
	}
	if err != nil {
		return fail(err)
	}
	return reply{ID: env.ID, Payload: payload, Sealed: sealed}
}
