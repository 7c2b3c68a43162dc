package store

import (
	"context"
	"encoding/json"
	"sync"

	"quiprend-service/internal/service/game"
	appErr "quiprend-service/pkg/errors"
)

// Memory is an in-process implementation of the game store with the same
// version compare-and-swap and event fan-out semantics as the redis one.
// It backs tests and single-node development without external services.
type Memory struct {
	mu        sync.RWMutex
	games     map[string][]byte
	subs      map[string][]chan game.Event
	published map[string][]game.Event
}

func NewMemory() *Memory {
	return &Memory{
		games:     make(map[string][]byte),
		subs:      make(map[string][]chan game.Event),
		published: make(map[string][]game.Event),
	}
}

func (s *Memory) Load(ctx context.Context, code string) (*game.Game, error) {
	s.mu.RLock()
	data, ok := s.games[code]
	s.mu.RUnlock()
	if !ok {
		return nil, appErr.ErrGameNotFound
	}

	var g game.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Memory) Save(ctx context.Context, g *game.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, ok := s.games[g.Code]; ok {
		var stored struct {
			Version int64 `json:"version"`
		}
		if err := json.Unmarshal(data, &stored); err != nil {
			return err
		}
		if stored.Version != g.Version {
			return appErr.ErrVersionConflict
		}
	} else if g.Version != 0 {
		return appErr.ErrVersionConflict
	}

	next := *g
	next.Version = g.Version + 1
	payload, err := json.Marshal(&next)
	if err != nil {
		return err
	}
	s.games[g.Code] = payload
	g.Version++
	return nil
}

func (s *Memory) Publish(ctx context.Context, code string, ev game.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.published[code] = append(s.published[code], ev)
	for _, ch := range s.subs[code] {
		select {
		case ch <- ev:
		default:
			// Slow subscriber; drop rather than block resolution.
		}
	}
	return nil
}

// SubscribeEvents mirrors the redis store's subscription contract.
func (s *Memory) SubscribeEvents(ctx context.Context, code string) (<-chan game.Event, func()) {
	ch := make(chan game.Event, 16)
	s.mu.Lock()
	s.subs[code] = append(s.subs[code], ch)
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.subs[code]
		for i, sub := range subs {
			if sub == ch {
				s.subs[code] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
	}
	return ch, cancel
}

// Events returns every event published for a game, in order. Test hook.
func (s *Memory) Events(code string) []game.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]game.Event(nil), s.published[code]...)
}
