package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"TitleCatalog/pkg/kit"
)

const (
	msgFound    = "Here are some related titles."
	msgNotFound = "No titles matched that query."

	welcomePage = "<h1>Welcome to the title catalog API</h1>"
)

type Server struct {
	Store   Store
	Log     *zap.Logger
	Metrics *Metrics

	// SearchLimit throttles /chatbot per client IP when set.
	SearchLimit *kit.IPRateLimiter
}

type chatbotResponse struct {
	Response string        `json:"response"`
	Found    bool          `json:"found"`
	Movies   []TitleRecord `json:"movies"`
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", home)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if s.Store == nil {
			if s.Log != nil {
				s.Log.Warn("readyz failed: catalog not loaded")
			}
			kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/movies", s.list)
	r.Get("/movies/by_category", s.byCategory)
	r.Get("/movies/by_category/", s.byCategory)
	r.Get("/movies/{id}", s.get)
	r.Get("/stats", s.stats)

	if s.SearchLimit != nil {
		r.With(s.SearchLimit.Middleware).Get("/chatbot", s.chatbot)
	} else {
		r.Get("/chatbot", s.chatbot)
	}

	return r
}

func home(w http.ResponseWriter, _ *http.Request) {
	kit.WriteHTML(w, http.StatusOK, welcomePage)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	titles := s.Store.ListAll()
	if len(titles) == 0 {
		if s.Log != nil {
			s.Log.Error("list titles: catalog is empty")
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "no titles available", nil)
		return
	}
	kit.WriteJSON(w, http.StatusOK, titles)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t, ok := s.Store.GetByID(id)
	if !ok {
		kit.WriteError(w, r, http.StatusNotFound, "title not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, t)
}

func (s *Server) byCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := queryParam(r, "category")
	if !ok {
		kit.WriteError(w, r, http.StatusBadRequest, "category required", nil)
		return
	}

	titles := s.Store.FilterByCategory(category)
	s.Metrics.observeFilter()
	kit.WriteJSON(w, http.StatusOK, titles)
}

func (s *Server) chatbot(w http.ResponseWriter, r *http.Request) {
	query, ok := queryParam(r, "query")
	if !ok {
		kit.WriteError(w, r, http.StatusBadRequest, "query required", nil)
		return
	}

	res := s.Store.SearchByKeyword(query)
	s.Metrics.observeSearch(res.Found)

	msg := msgNotFound
	if res.Found {
		msg = msgFound
	}
	if s.Log != nil {
		s.Log.Debug("keyword search",
			zap.String("query", query),
			zap.Int("matches", len(res.Titles)),
		)
	}

	kit.WriteJSON(w, http.StatusOK, chatbotResponse{
		Response: msg,
		Found:    res.Found,
		Movies:   res.Titles,
	})
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Store.Stats())
}

func queryParam(r *http.Request, key string) (string, bool) {
	vals, ok := r.URL.Query()[key]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}
