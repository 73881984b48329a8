// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hotstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"txnstats/internal/txkeys"
)

// Options configures one hot-store client. Each pipeline role (producer,
// consumer, archiver, query) gets its own client so blocking group reads
// never head-of-line block short reads.
type Options struct {
	Addr     string
	Username string
	Password string
}

// GoRedisClient is the production hot-store client on go-redis v9.
type GoRedisClient struct {
	c *redis.Client
}

// NewGoRedisClient dials a client for one role.
func NewGoRedisClient(opts Options) *GoRedisClient {
	return &GoRedisClient{c: redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Username: opts.Username,
		Password: opts.Password,
	})}
}

// Close releases the underlying connection pool.
func (g *GoRedisClient) Close() error { return g.c.Close() }

// Ping verifies connectivity; used at startup only.
func (g *GoRedisClient) Ping(ctx context.Context) error {
	return g.c.Ping(ctx).Err()
}

// EnsureGroup creates the consumer group (and the stream) if absent.
// An already-existing group is not an error.
func (g *GoRedisClient) EnsureGroup(ctx context.Context, stream, group string) error {
	err := g.c.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create group %s on %s: %w", group, stream, err)
	}
	return nil
}

// Append adds one message to the stream; the server assigns the id.
func (g *GoRedisClient) Append(ctx context.Context, stream string, values map[string]string) error {
	args := make(map[string]interface{}, len(values))
	for k, v := range values {
		args[k] = v
	}
	return g.c.XAdd(ctx, &redis.XAddArgs{Stream: stream, Values: args}).Err()
}

// ReadGroup performs one blocking group read of up to count new messages.
// An empty slice with a nil error means the block timeout elapsed.
func (g *GoRedisClient) ReadGroup(ctx context.Context, stream, group, consumer string, count int64, block time.Duration) ([]Message, error) {
	res, err := g.c.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Count:    count,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("xreadgroup %s/%s: %w", stream, group, err)
	}
	var out []Message
	for _, s := range res {
		for _, m := range s.Messages {
			values := make(map[string]string, len(m.Values))
			for k, v := range m.Values {
				if sv, ok := v.(string); ok {
					values[k] = sv
				} else {
					values[k] = fmt.Sprint(v)
				}
			}
			out = append(out, Message{ID: m.ID, Values: values})
		}
	}
	return out, nil
}

// Apply executes one WriteBatch as a single pipeline. The pipeline is a
// batching optimization, not a transaction; see the aggregator for the
// accepted double-count window on crash.
func (g *GoRedisClient) Apply(ctx context.Context, stream, group string, b *WriteBatch) error {
	if b.Empty() {
		return nil
	}
	pipe := g.c.Pipeline()
	for _, inc := range b.Incs {
		pipe.HIncrByFloat(ctx, inc.Key, inc.Field, inc.Delta)
	}
	for _, day := range b.Days {
		pipe.SAdd(ctx, txkeys.TrackedDaysKey, day)
	}
	if b.Clock != "" {
		pipe.Set(ctx, txkeys.VirtualClockKey, b.Clock, 0)
	}
	for _, id := range b.Acks {
		pipe.XAck(ctx, stream, group, id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("apply batch: %w", err)
	}
	return nil
}

// Get returns a string value; ok is false when the key is absent.
func (g *GoRedisClient) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := g.c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return v, true, nil
}

// SMembers returns every member of a set.
func (g *GoRedisClient) SMembers(ctx context.Context, key string) ([]string, error) {
	v, err := g.c.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("smembers %s: %w", key, err)
	}
	return v, nil
}

// SRem removes members from a set.
func (g *GoRedisClient) SRem(ctx context.Context, key string, members ...string) error {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err := g.c.SRem(ctx, key, args...).Err(); err != nil {
		return fmt.Errorf("srem %s: %w", key, err)
	}
	return nil
}

// FetchHashes reads several hashes in one pipelined round-trip, returned in
// key order. Absent hashes come back as empty maps.
func (g *GoRedisClient) FetchHashes(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	pipe := g.c.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.HGetAll(ctx, k)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("fetch hashes: %w", err)
	}
	out := make([]map[string]string, len(keys))
	for i, cmd := range cmds {
		out[i] = cmd.Val()
	}
	return out, nil
}

// DropDay deletes a day's aggregate keys and removes the day from the
// tracked set in one pipeline. The caller must have written the cold copy
// first; this is the only code path that deletes hot aggregates.
func (g *GoRedisClient) DropDay(ctx context.Context, day string, aggKeys ...string) error {
	pipe := g.c.Pipeline()
	pipe.Del(ctx, aggKeys...)
	pipe.SRem(ctx, txkeys.TrackedDaysKey, day)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("drop day %s: %w", day, err)
	}
	return nil
}
