// Package application contém os casos de uso de admissão de conexões e de
// limite de concorrência.
//
// Ele depende apenas do pacote domain e não conhece net/http.
// Ex.: Gate.Admit(id) retorna uma Decision (admitted/rejected + retry-after).
package application
