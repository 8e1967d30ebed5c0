package admission

import (
	"net/http"
	"time"

	"connection-guard/middleware/admission/application"
	"connection-guard/middleware/admission/domain"
	"connection-guard/middleware/admission/infra"
)

// ConcurrencyOptions aplica o max_connections do serviço: quantos requests
// admitidos podem estar em atendimento ao mesmo tempo.
type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration

	// Slots é o pool de vagas; nil cria um com Max vagas. Passe um pool
	// próprio para expor o uso (Metrics.WatchConnSlots).
	Slots   domain.ConnSlots
	Metrics *infra.Metrics
}

func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	if opts.Slots == nil {
		opts.Slots = infra.NewSlotPool(opts.Max)
	}

	svc := application.ConcurrencyService{
		Slots:          opts.Slots,
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				opts.Metrics.ObserveSlotRejection()
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
