package redisqueue

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/prpass/internal/codec"
	"github.com/MrEthical07/prpass/kdf"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Client submits jobs to remote workers. It satisfies executor.Executor and
// prpass.JobExecutor.
type Client struct {
	redis redis.UniversalClient
	opts  Options
}

func NewClient(client redis.UniversalClient, opts Options) *Client {
	return &Client{
		redis: client,
		opts:  opts.withDefaults(),
	}
}

// Execute enqueues job and waits for its result until ctx ends. A job abandoned by
// cancellation may still run on a worker; its result expires unread.
func (c *Client) Execute(ctx context.Context, job kdf.Job) ([]byte, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	encoded, err := job.MarshalBinary()
	if err != nil {
		return nil, err
	}
	payload, sealed, err := seal(c.opts.AEAD, encoded, id)
	if sealed {
		wipe(encoded)
	}
	if err != nil {
		return nil, err
	}

	env, err := codec.Marshal(envelope{ID: id, Payload: payload, Sealed: sealed})
	if err != nil {
		return nil, err
	}
	if err := c.redis.RPush(ctx, jobsKey(c.opts.Prefix), env).Err(); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}
	c.opts.Logger.Debug("job enqueued", "id", id, "algorithm", job.Algorithm, "tier", job.Tier.String())

	raw, err := c.await(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.decodeReply(raw, id, job.OutputLen)
}

func (c *Client) await(ctx context.Context, id string) ([]byte, error) {
	key := resultKey(c.opts.Prefix, id)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := c.redis.BLPop(ctx, c.opts.PollTimeout, key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("await result: %w", err)
		}
		// BLPOP returns [key, value].
		return []byte(res[1]), nil
	}
}

func (c *Client) decodeReply(raw []byte, id string, outputLen int) ([]byte, error) {
	var r reply
	if err := codec.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if r.ID != id {
		return nil, fmt.Errorf("%w: reply for %q on %q", ErrMalformedEnvelope, r.ID, id)
	}
	if r.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrRemote, r.Error)
	}

	out, err := open(c.opts.AEAD, r.Payload, r.Sealed, id)
	if err != nil {
		return nil, err
	}
	if len(out) != outputLen {
		wipe(out)
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrResultLength, len(out), outputLen)
	}
	return out, nil
}
