// Package admission fornece adapters (net.Listener e net/http) para a guarda de
// admissão de conexões.
//
// Visão geral (camadas):
//
//   - domain: contratos e tipos do domínio (sem dependência de net/http)
//   - application: casos de uso (Gate.Admit, acquire/timeout) sem net/http
//   - infra: implementações concretas (ban list, janela, scheduler, semáforo,
//     métricas, stats)
//   - admission (este pacote): Listener, middlewares HTTP, rotas admin e o
//     wiring de tudo isso em um Guard
//
// Fluxo por conexão:
//
//  1. Extrai a identidade do cliente (IP do socket, ou header/XFF no HTTP)
//  2. Converte em ClientID (xxhash) e chama Gate.Admit
//  3. Se rejeitado, fecha a conexão (Listener) ou responde 429 (Middleware)
//  4. Se admitido, segue para o handler (ex: reverse proxy, rotas de músicas)
//
// Em paralelo, o Scheduler roda o cycle da janela (bane quem aparece demais)
// e o decay da ban list (expira bans).
package admission
