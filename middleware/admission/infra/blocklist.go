package infra

import (
	"sort"
	"sync"

	"connection-guard/middleware/admission/domain"
)

// BlockedList guarda os clientes banidos e quantos ticks de decay faltam
// para cada ban expirar.
//
// Leituras (uma por conexão) são muito mais frequentes que escritas (cycle e
// decay), por isso RWMutex. Ban e Tick são serializados pelo lock de escrita.
type BlockedList struct {
	mu   sync.RWMutex
	list map[domain.ClientID]int
}

func NewBlockedList() *BlockedList {
	return &BlockedList{list: make(map[domain.ClientID]int)}
}

// IsBlocked implementa domain.BanChecker.
func (b *BlockedList) IsBlocked(id domain.ClientID) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.list[id] > 0
}

// Remaining implementa domain.BanInspector.
func (b *BlockedList) Remaining(id domain.ClientID) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	n, ok := b.list[id]
	return n, ok && n > 0
}

// Ban insere ou sobrescreve o ban de id. Reincidência volta a duração
// para ticks, mesmo que o ban atual seja maior ou menor.
func (b *BlockedList) Ban(id domain.ClientID, ticks int) {
	if ticks <= 0 {
		return
	}
	b.mu.Lock()
	b.list[id] = ticks
	b.mu.Unlock()
}

func (b *BlockedList) Unban(id domain.ClientID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.list[id]; !ok {
		return false
	}
	delete(b.list, id)
	return true
}

// Tick decrementa todos os bans em uma única passada sob o lock de escrita
// e remove os que chegaram a zero. Retorna quantos expiraram.
func (b *BlockedList) Tick() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	expired := 0
	for id, n := range b.list {
		n--
		if n <= 0 {
			delete(b.list, id)
			expired++
			continue
		}
		b.list[id] = n
	}
	return expired
}

func (b *BlockedList) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.list)
}

// Snapshot devolve uma cópia ordenada por id.
func (b *BlockedList) Snapshot() []domain.BanEntry {
	b.mu.RLock()
	out := make([]domain.BanEntry, 0, len(b.list))
	for id, n := range b.list {
		out = append(out, domain.BanEntry{Client: id, Remaining: n})
	}
	b.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Client < out[j].Client })
	return out
}
