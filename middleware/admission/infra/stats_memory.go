package infra

import (
	"context"
	"sync"

	"connection-guard/middleware/admission/domain"
)

type Counters struct {
	Admitted int64
	Rejected int64
}

func (c *Counters) add(v domain.Verdict) {
	if v == domain.Admitted {
		c.Admitted++
		return
	}
	c.Rejected++
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração; com WithTrackClients o map por cliente cresce sem limite.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    Counters
	bySource map[string]Counters
	byClient map[domain.ClientID]Counters

	trackClients bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackClients(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackClients = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		bySource: make(map[string]Counters),
		byClient: make(map[domain.ClientID]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Verdict)

	c := s.bySource[ev.Source]
	c.add(ev.Verdict)
	s.bySource[ev.Source] = c

	if s.trackClients {
		k := s.byClient[ev.Client]
		k.add(ev.Verdict)
		s.byClient[ev.Client] = k
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) BySource() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.bySource))
	for k, v := range s.bySource {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByClient() map[domain.ClientID]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.ClientID]Counters, len(s.byClient))
	for k, v := range s.byClient {
		out[k] = v
	}
	return out
}
