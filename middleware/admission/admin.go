package admission

import (
	"crypto/subtle"
	"net/http"

	"connection-guard/middleware/admission/domain"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
)

// BanAdmin é o que a API admin precisa da ban list.
type BanAdmin interface {
	Snapshot() []domain.BanEntry
	Unban(domain.ClientID) bool
}

type banView struct {
	Client    string `json:"client"`
	Remaining int    `json:"remaining_ticks"`
}

// AdminRoutes expõe a ban list:
//
//	GET    /bans       lista os bans ativos
//	DELETE /bans/{id}  remove um ban (id em hex, como em X-Admission-Client)
//
// Toda rota exige o header X-Admin-Key. Com adminKey vazio as rotas
// respondem 404, ou seja, a API fica desligada.
func AdminRoutes(bans BanAdmin, adminKey string) http.Handler {
	r := chi.NewRouter()
	r.Use(requireAdminKey(adminKey))

	r.Get("/bans", func(w http.ResponseWriter, r *http.Request) {
		snap := bans.Snapshot()
		out := make([]banView, 0, len(snap))
		for _, e := range snap {
			out = append(out, banView{Client: e.Client.String(), Remaining: e.Remaining})
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Delete("/bans/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := domain.ParseClientID(chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !bans.Unban(id) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

func requireAdminKey(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				http.NotFound(w, r)
				return
			}
			got := r.Header.Get("X-Admin-Key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
