package infra

import (
	"net"
	"strings"

	"connection-guard/middleware/admission/domain"

	"github.com/cespare/xxhash/v2"
)

// HashIdentity deriva o ClientID a partir da identidade textual do cliente
// (IP, api key, ...). É determinístico entre processos.
func HashIdentity(key string) domain.ClientID {
	return domain.ClientID(xxhash.Sum64String(key))
}

// AddrKey extrai o host de um net.Addr (ignora a porta de origem, que muda a
// cada conexão).
func AddrKey(addr net.Addr) string {
	if addr == nil {
		return "unknown"
	}
	switch a := addr.(type) {
	case *net.TCPAddr:
		return a.IP.String()
	case *net.UDPAddr:
		return a.IP.String()
	}
	s := strings.TrimSpace(addr.String())
	if host, _, err := net.SplitHostPort(s); err == nil && host != "" {
		return host
	}
	if s == "" {
		return "unknown"
	}
	return s
}
