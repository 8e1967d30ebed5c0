package domain

import (
	"errors"
	"strconv"
)

var ErrInvalidClientID = errors.New("invalid client id")

// ClientID é a impressão digital numérica de um cliente (ex: hash do IP).
//
// É imutável e totalmente ordenável; serve como chave de map.
type ClientID uint64

// String renderiza o id com 16 dígitos hexadecimais (logs, stats, API admin).
func (id ClientID) String() string {
	s := strconv.FormatUint(uint64(id), 16)
	if len(s) < 16 {
		s = zeros[:16-len(s)] + s
	}
	return s
}

const zeros = "0000000000000000"

// ParseClientID é o inverso de ClientID.String.
func ParseClientID(s string) (ClientID, error) {
	if s == "" || len(s) > 16 {
		return 0, ErrInvalidClientID
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, ErrInvalidClientID
	}
	return ClientID(v), nil
}
