package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"quiprend-service/internal/service/game"
	appErr "quiprend-service/pkg/errors"
	"quiprend-service/pkg/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis persists whole-game JSON snapshots and fans resolution events out
// over pub/sub. Writes are guarded by the aggregate's version inside a
// WATCH transaction: if the stored snapshot moved since the caller read it,
// the write fails with ErrVersionConflict instead of clobbering it.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func gameKey(code string) string {
	return fmt.Sprintf("game:%s", code)
}

func eventsKey(code string) string {
	return fmt.Sprintf("game:events:%s", code)
}

func (s *Redis) Load(ctx context.Context, code string) (*game.Game, error) {
	data, err := s.rdb.Get(ctx, gameKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, appErr.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}

	var g game.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("corrupt game snapshot %s: %w", code, err)
	}
	return &g, nil
}

func (s *Redis) Save(ctx context.Context, g *game.Game) error {
	key := gameKey(g.Code)

	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if g.Version != 0 {
				return appErr.ErrVersionConflict
			}
		case err != nil:
			return err
		default:
			var stored struct {
				Version int64 `json:"version"`
			}
			if err := json.Unmarshal(cur, &stored); err != nil {
				return fmt.Errorf("corrupt game snapshot %s: %w", g.Code, err)
			}
			if stored.Version != g.Version {
				return appErr.ErrVersionConflict
			}
		}

		next := *g
		next.Version = g.Version + 1
		payload, err := json.Marshal(&next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		// Key changed between WATCH and EXEC.
		return appErr.ErrVersionConflict
	}
	if err != nil {
		return err
	}
	g.Version++
	return nil
}

func (s *Redis) Publish(ctx context.Context, code string, ev game.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.rdb.Publish(ctx, eventsKey(code), payload).Err()
}

// SubscribeEvents opens a pub/sub subscription for one game's resolution
// events. The returned cancel function closes the subscription and the
// channel. Malformed frames are dropped with a warning.
func (s *Redis) SubscribeEvents(ctx context.Context, code string) (<-chan game.Event, func()) {
	ps := s.rdb.Subscribe(ctx, eventsKey(code))
	out := make(chan game.Event, 16)

	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var ev game.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				logger.Log.Warn("dropping malformed game event",
					zap.String("gameCode", code),
					zap.Error(err),
				)
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		_ = ps.Close()
	}
	return out, cancel
}
