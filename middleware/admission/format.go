// utilitário pequeno para formatação de valores em headers.
//    Retry-After é sempre em segundos inteiros, arredondando para cima,
//    para o cliente não voltar antes do ban expirar.

package admission

import (
	"strconv"
	"time"
)

func formatInt(v int) string { return strconv.Itoa(v) }

func formatRetryAfter(d time.Duration) string {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return formatInt(secs)
}
