// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - BlockedList: ban list com RWMutex, consultada em toda conexão
//   - Window: janela circular dos últimos N clientes + análise de frequência
//   - Scheduler: goroutines de cycle e decay
//   - SlotPool: semáforo simples para max_connections
//   - Metrics / StatsStore: prometheus, memória e redis
package infra
