package infra

import (
	"sort"
	"sync"
	"sync/atomic"

	"connection-guard/middleware/admission/domain"
)

// Window é a janela circular dos últimos clientes admitidos.
//
// A capacidade é estrita: Record com a janela cheia descarta o registro e
// incrementa Dropped. O único caminho de remoção é Cycle.
//
// A janela tem seu próprio lock e nunca toca na BlockedList; quem aplica os
// bans é o Scheduler, depois que o lock da janela já foi liberado.
type Window struct {
	mu    sync.Mutex
	buf   []domain.ClientID
	head  int
	size  int
	limit int

	dropped atomic.Uint64
}

// NewWindow cria uma janela com `capacity` slots. Clientes que aparecerem
// mais de `limit` vezes no momento do Cycle são considerados abusivos.
func NewWindow(capacity, limit int) *Window {
	if capacity <= 0 {
		capacity = 1
	}
	return &Window{
		buf:   make([]domain.ClientID, capacity),
		limit: limit,
	}
}

// Record implementa domain.Recorder. O(1).
func (w *Window) Record(id domain.ClientID) bool {
	w.mu.Lock()
	if w.size == len(w.buf) {
		w.mu.Unlock()
		w.dropped.Add(1)
		return false
	}
	w.buf[(w.head+w.size)%len(w.buf)] = id
	w.size++
	w.mu.Unlock()
	return true
}

// Cycle remove a entrada mais antiga e devolve, ordenados, os clientes que
// aparecem estritamente mais que o limite no que sobrou da janela.
func (w *Window) Cycle() []domain.ClientID {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size == 0 {
		return nil
	}
	w.head = (w.head + 1) % len(w.buf)
	w.size--

	counts := make(map[domain.ClientID]int, w.size)
	for i := 0; i < w.size; i++ {
		counts[w.buf[(w.head+i)%len(w.buf)]]++
	}

	var offenders []domain.ClientID
	for id, n := range counts {
		if n > w.limit {
			offenders = append(offenders, id)
		}
	}
	sort.Slice(offenders, func(i, j int) bool { return offenders[i] < offenders[j] })
	return offenders
}

func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

func (w *Window) Cap() int { return len(w.buf) }

// Dropped conta quantos Record foram descartados por janela cheia.
// Crescendo, indica que o cycle roda devagar demais para o tráfego.
func (w *Window) Dropped() uint64 { return w.dropped.Load() }

// Contents devolve uma cópia da janela, da mais antiga para a mais nova.
func (w *Window) Contents() []domain.ClientID {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.ClientID, w.size)
	for i := range out {
		out[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	return out
}
