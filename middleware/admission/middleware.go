package admission

import (
	"net"
	"net/http"
	"strings"
	"time"

	"connection-guard/middleware/admission/domain"
	"connection-guard/middleware/admission/infra"
)

type KeyFunc func(r *http.Request) string

// Options configura a admissão por request, para quando o serviço roda atrás
// de um proxy e o IP do socket não identifica o cliente.
type Options struct {
	Gate               Admitter
	Stats              *StatsQueue
	KeyFn              KeyFunc
	KeyHeader          string
	TrustXForwardedFor bool
	RejectStatus       int
	AddClientHeader    bool
}

func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		// fallback: RemoteAddr
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.KeyHeader, opts.TrustXForwardedFor)
	}
	if opts.Gate == nil {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := infra.HashIdentity(opts.KeyFn(r))
			if opts.AddClientHeader {
				w.Header().Set("X-Admission-Client", id.String())
			}

			dec := opts.Gate.Admit(id)
			opts.Stats.Push(domain.StatsEvent{
				Client:  id,
				Verdict: dec.Verdict,
				Source:  "http",
				At:      time.Now(),
			})
			if !dec.Admitted() {
				w.Header().Set("Retry-After", formatRetryAfter(dec.RetryAfter))
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
