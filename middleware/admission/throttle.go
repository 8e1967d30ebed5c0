package admission

import "golang.org/x/time/rate"

// NewAcceptThrottle cria o token bucket global de accepts (x/time/rate).
// É um único limiter para o listener inteiro, não uma cota por endpoint.
// Retorna nil (sem throttle) quando rps <= 0.
func NewAcceptThrottle(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = int(rps)
		if burst < 1 {
			burst = 1
		}
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
