package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long individual run events are retained.
const DefaultTTL = 30 * 24 * time.Hour

// RedisRecorder stores each run event under its own key and indexes it on a
// global timeline plus a per-project timeline.
type RedisRecorder struct {
	client *redis.Client
}

func NewRedisRecorder(addr, password string) (*RedisRecorder, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &RedisRecorder{client: client}, nil
}

func (r *RedisRecorder) RecordRun(ctx context.Context, ev RunEvent) error {
	ev = stamp(ev)
	eventID := uuid.New().String()

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal run event: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, "run:"+eventID, payload, DefaultTTL)
	pipe.ZAdd(ctx, "runs:timeline", redis.Z{Score: float64(ev.Timestamp), Member: eventID})
	pipe.ZAdd(ctx, "runs:project:"+ev.ProjectID, redis.Z{Score: float64(ev.Timestamp), Member: eventID})
	_, err = pipe.Exec(ctx)
	return err
}

func (r *RedisRecorder) Close() error { return r.client.Close() }
