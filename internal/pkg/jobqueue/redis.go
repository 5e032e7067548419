package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "herald:jobs:"

// Redis stores jobs in redis. Per queue it keeps a pending ZSET scored by
// run time, an active ZSET scored by lease deadline, a HASH of job bodies and
// bounded LISTs of finished ids. Queue keys share a hash tag so the scripts
// stay on one cluster slot.
type Redis struct {
	client redis.UniversalClient
}

// NewRedis returns a backend over client.
func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

type queueKeys struct {
	pending, active, data, completed, failed string
}

func keysFor(queue string) queueKeys {
	base := fmt.Sprintf("%s{%s}:", redisPrefix, queue)
	return queueKeys{
		pending:   base + "pending",
		active:    base + "active",
		data:      base + "data",
		completed: base + "completed",
		failed:    base + "failed",
	}
}

func repeatLockKey(id string) string { return redisPrefix + "repeat-lock:" + id }

const repeatsKey = redisPrefix + "repeats"

var addScript = redis.NewScript(`
if redis.call('HSETNX', KEYS[2], ARGV[1], ARGV[2]) == 0 then
  return 0
end
redis.call('ZADD', KEYS[1], ARGV[3], ARGV[1])
return 1
`)

var claimScript = redis.NewScript(`
local expired = redis.call('ZRANGEBYSCORE', KEYS[2], '-inf', ARGV[1])
for _, id in ipairs(expired) do
  redis.call('ZREM', KEYS[2], id)
  redis.call('ZADD', KEYS[1], ARGV[1], id)
end
local ids = redis.call('ZRANGEBYSCORE', KEYS[1], '-inf', ARGV[1], 'LIMIT', 0, tonumber(ARGV[2]))
for _, id in ipairs(ids) do
  redis.call('ZREM', KEYS[1], id)
  redis.call('ZADD', KEYS[2], ARGV[3], id)
end
return ids
`)

var finishScript = redis.NewScript(`
redis.call('ZREM', KEYS[1], ARGV[1])
redis.call('ZREM', KEYS[2], ARGV[1])
redis.call('HSET', KEYS[3], ARGV[1], ARGV[2])
redis.call('LPUSH', KEYS[4], ARGV[1])
local keep = tonumber(ARGV[3])
local dropped = redis.call('LRANGE', KEYS[4], keep, -1)
for _, id in ipairs(dropped) do
  redis.call('HDEL', KEYS[3], id)
end
if keep == 0 then
  redis.call('DEL', KEYS[4])
else
  redis.call('LTRIM', KEYS[4], 0, keep - 1)
end
return #dropped
`)

func (r *Redis) Add(ctx context.Context, job *Job) (bool, error) {
	body, err := json.Marshal(job)
	if err != nil {
		return false, err
	}

	k := keysFor(job.Queue)
	n, err := addScript.Run(ctx, r.client, []string{k.pending, k.data}, job.ID, body, job.RunAt.UnixMilli()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *Redis) Claim(ctx context.Context, queue string, now time.Time, lease time.Duration, limit int) ([]*Job, error) {
	k := keysFor(queue)
	ids, err := claimScript.Run(ctx, r.client, []string{k.pending, k.active},
		now.UnixMilli(), limit, now.Add(lease).UnixMilli()).StringSlice()
	if err != nil {
		return nil, err
	}

	jobs, err := r.load(ctx, k.data, ids)
	if err != nil {
		return nil, err
	}
	for _, j := range jobs {
		j.Status = StatusActive
	}
	return jobs, nil
}

func (r *Redis) load(ctx context.Context, dataKey string, ids []string) ([]*Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	vals, err := r.client.HMGet(ctx, dataKey, ids...).Result()
	if err != nil {
		return nil, err
	}

	out := make([]*Job, 0, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			// body pruned while the id was still listed
			continue
		}
		var j Job
		if err := json.Unmarshal([]byte(s), &j); err != nil {
			return nil, fmt.Errorf("jobqueue: decode job %s: %w", ids[i], err)
		}
		out = append(out, &j)
	}
	return out, nil
}

func (r *Redis) Retry(ctx context.Context, job *Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	k := keysFor(job.Queue)
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRem(ctx, k.active, job.ID)
		p.HSet(ctx, k.data, job.ID, body)
		p.ZAdd(ctx, k.pending, redis.Z{Score: float64(job.RunAt.UnixMilli()), Member: job.ID})
		return nil
	})
	return err
}

func (r *Redis) Complete(ctx context.Context, job *Job, keep int) error {
	k := keysFor(job.Queue)
	return r.finish(ctx, job, k, k.completed, keep)
}

func (r *Redis) Fail(ctx context.Context, job *Job, keep int) error {
	k := keysFor(job.Queue)
	return r.finish(ctx, job, k, k.failed, keep)
}

func (r *Redis) finish(ctx context.Context, job *Job, k queueKeys, list string, keep int) error {
	body, err := json.Marshal(job)
	if err != nil {
		return err
	}

	return finishScript.Run(ctx, r.client, []string{k.active, k.pending, k.data, list},
		job.ID, body, keep).Err()
}

func (r *Redis) Failed(ctx context.Context, queue string, limit int) ([]*Job, error) {
	k := keysFor(queue)
	ids, err := r.client.LRange(ctx, k.failed, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}
	return r.load(ctx, k.data, ids)
}

func (r *Redis) AcquireRepeat(ctx context.Context, repeatID string, ttl time.Duration) (bool, error) {
	return r.client.SetNX(ctx, repeatLockKey(repeatID), time.Now().UnixMilli(), ttl).Result()
}

func (r *Redis) ReleaseRepeat(ctx context.Context, repeatID string) error {
	return r.client.Del(ctx, repeatLockKey(repeatID)).Err()
}

func (r *Redis) SaveRepeat(ctx context.Context, spec RepeatSpec) error {
	body, err := json.Marshal(spec)
	if err != nil {
		return err
	}
	return r.client.HSet(ctx, repeatsKey, spec.ID, body).Err()
}

func (r *Redis) ClearRepeats(ctx context.Context) error {
	return r.client.Del(ctx, repeatsKey).Err()
}

func (r *Redis) Repeats(ctx context.Context) ([]RepeatSpec, error) {
	vals, err := r.client.HGetAll(ctx, repeatsKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	out := make([]RepeatSpec, 0, len(vals))
	for id, v := range vals {
		var s RepeatSpec
		if err := json.Unmarshal([]byte(v), &s); err != nil {
			return nil, fmt.Errorf("jobqueue: decode repeat %s: %w", id, err)
		}
		out = append(out, s)
	}
	return out, nil
}
