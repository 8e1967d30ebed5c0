package admission

import (
	"context"
	"net"
	"sync"
	"time"

	"connection-guard/middleware/admission/domain"
	"connection-guard/middleware/admission/infra"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type ListenerOptions struct {
	Gate     Admitter
	Stats    *StatsQueue
	Throttle *rate.Limiter
	Logger   zerolog.Logger
	// IdentityFn converte o endereço remoto em ClientID.
	// Se nil, usa xxhash do IP (infra.AddrKey + infra.HashIdentity).
	IdentityFn func(net.Addr) domain.ClientID
}

// Listener aplica a admissão uma vez por conexão aceita. Conexões de clientes
// banidos são fechadas antes de chegar ao servidor; Accept só devolve
// conexões admitidas. Sem Gate, só o throttle de accept é aplicado (a
// admissão fica com o Middleware).
type Listener struct {
	net.Listener
	opts ListenerOptions

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func NewListener(inner net.Listener, opts ListenerOptions) *Listener {
	if opts.IdentityFn == nil {
		opts.IdentityFn = func(a net.Addr) domain.ClientID { return infra.HashIdentity(infra.AddrKey(a)) }
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener{Listener: inner, opts: opts, ctx: ctx, cancel: cancel}
}

func (l *Listener) Accept() (net.Conn, error) {
	for {
		if l.opts.Throttle != nil {
			if err := l.opts.Throttle.Wait(l.ctx); err != nil {
				return nil, net.ErrClosed
			}
		}

		conn, err := l.Listener.Accept()
		if err != nil {
			return nil, err
		}
		if l.opts.Gate == nil {
			return conn, nil
		}

		dec := l.opts.Gate.Admit(l.opts.IdentityFn(conn.RemoteAddr()))
		l.record(dec)
		if dec.Admitted() {
			return conn, nil
		}

		l.opts.Logger.Debug().
			Str("client", dec.Client.String()).
			Str("remote", conn.RemoteAddr().String()).
			Msg("connection rejected")
		_ = conn.Close()
	}
}

func (l *Listener) Close() error {
	l.once.Do(l.cancel)
	return l.Listener.Close()
}

func (l *Listener) record(dec domain.Decision) {
	l.opts.Stats.Push(domain.StatsEvent{Client: dec.Client, Verdict: dec.Verdict, Source: "listener", At: time.Now()})
}
