package catalog

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Router returns the HTTP surface of the service.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/dicts", s.handleDicts)
	r.Get("/article/{dict}/{word}", s.handleArticle)
	r.Get("/search/{dict}", s.handleSearch)
	return r
}

type dictInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Service) handleDicts(w http.ResponseWriter, r *http.Request) {
	list := make([]dictInfo, 0, len(s.sources))
	for _, src := range s.sources {
		list = append(list, dictInfo{ID: src.ID(), Name: src.Name()})
	}
	writeJSON(w, http.StatusOK, list)
}

// handleArticle serves one article. ?alt=... adds alternate spellings;
// ?format=markdown or ?format=text converts the rewritten HTML.
func (s *Service) handleArticle(w http.ResponseWriter, r *http.Request) {
	dictID := chi.URLParam(r, "dict")
	word := chi.URLParam(r, "word")

	body, err := s.Lookup(r.Context(), dictID, word, r.URL.Query()["alt"]...)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "markdown":
		md, err := ToMarkdown(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(md))
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(ToText(body)))
	default:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(body)
	}
}

func (s *Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	dictID := chi.URLParam(r, "dict")
	word := r.URL.Query().Get("q")
	if word == "" {
		http.Error(w, "missing q parameter", http.StatusBadRequest)
		return
	}

	matches, err := s.Search(r.Context(), dictID, word)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	if matches == nil {
		matches = []string{}
	}
	writeJSON(w, http.StatusOK, matches)
}

func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownSource):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrNoArticle):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
