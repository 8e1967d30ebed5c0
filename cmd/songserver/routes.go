package main

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type songInMemory struct {
	Title    string  `json:"title"`
	Album    *string `json:"album"`
	Duration float64 `json:"duration"`
}

type songs struct {
	listPath string
	dataDir  string
	logger   zerolog.Logger
}

func newRouter(s songs) chi.Router {
	r := chi.NewRouter()
	r.Get("/song_list", s.list)
	r.Get("/song/{name}", s.data)
	return r
}

// list devolve a lista de músicas. Arquivo ausente vira lista vazia.
func (s songs) list(w http.ResponseWriter, r *http.Request) {
	raw, err := os.ReadFile(s.listPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn().Err(err).Str("path", s.listPath).Msg("read song list")
	}

	list := []songInMemory{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &list); err != nil {
			s.logger.Error().Err(err).Str("path", s.listPath).Msg("decode song list")
			http.Error(w, "invalid song list", http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, list)
}

// data devolve o conteúdo de MUSIC_DIR/<name> como string json.
func (s songs) data(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		http.Error(w, "invalid song name", http.StatusBadRequest)
		return
	}

	raw, err := os.ReadFile(filepath.Join(s.dataDir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		s.logger.Warn().Err(err).Str("song", name).Msg("read song data")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	writeJSON(w, string(raw))
}

func writeJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}
