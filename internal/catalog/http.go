package catalog

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ProductAPI/pkg/kit"
)

const (
	bannerText = "Welcome to the Product API! Go to /api/products to see all products."

	msgProductNotFound = "Product not found"
)

type Server struct {
	Store  Store
	Log    *zap.Logger
	APIKey string

	// WriteLimiter, when set, throttles the mutating routes per client IP.
	WriteLimiter *kit.IPRateLimiter
	// NewID generates product ids; defaults to random UUIDs.
	NewID func() string
}

type ListResponse struct {
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
	Products []Product `json:"products"`
}

type StatsResponse struct {
	CountByCategory map[string]int `json:"countByCategory"`
}

type result struct {
	status int
	body   any
}

func ok(body any) result { return result{status: http.StatusOK, body: body} }

type apiFunc func(r *http.Request) (result, error)

// handle adapts an apiFunc to net/http; every failure goes through kit.WriteErr.
func (s *Server) handle(fn apiFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := fn(r)
		if err != nil {
			kit.WriteErr(w, r, s.Log, err)
			return
		}
		kit.WriteJSON(w, res.status, res.body)
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		kit.WriteError(w, r, http.StatusNotFound, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		kit.WriteError(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) { kit.WriteText(w, http.StatusOK, bannerText) })
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.readyz)

	r.Route("/api/products", func(pr chi.Router) {
		pr.Get("/", s.handle(s.list))
		pr.Get("/stats", s.handle(s.stats))
		pr.Get("/{id}", s.handle(s.get))

		pr.Group(func(wr chi.Router) {
			wr.Use(RequireAPIKey(s.APIKey))
			if s.WriteLimiter != nil {
				wr.Use(s.WriteLimiter.Middleware)
			}

			wr.With(s.validateProduct).Post("/", s.handle(s.create))
			wr.With(s.validateProduct).Put("/{id}", s.handle(s.update))
			wr.Delete("/{id}", s.handle(s.delete))
		})
	})

	return r
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		if s.Log != nil {
			s.Log.Warn("readyz failed", zap.Error(err))
		}
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) list(r *http.Request) (result, error) {
	q := ParseListQuery(r.URL.Query())

	products, err := s.Store.List(r.Context(), q.Filter)
	if err != nil {
		return result{}, err
	}

	page, limit := q.Resolve(len(products))
	return ok(ListResponse{
		Total:    len(products),
		Page:     page,
		Limit:    limit,
		Products: Paginate(products, page, limit),
	}), nil
}

func (s *Server) stats(r *http.Request) (result, error) {
	counts, err := s.Store.CountByCategory(r.Context())
	if err != nil {
		return result{}, err
	}
	if counts == nil {
		counts = map[string]int{}
	}
	return ok(StatsResponse{CountByCategory: counts}), nil
}

func (s *Server) get(r *http.Request) (result, error) {
	p, err := s.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return result{}, storeErr(err)
	}
	return ok(p), nil
}

func (s *Server) create(r *http.Request) (result, error) {
	in, found := InputFromContext(r.Context())
	if !found {
		return result{}, errors.New("validated input missing from context")
	}

	p := in.ApplyTo(Product{ID: s.newID()})
	if err := s.Store.Create(r.Context(), p); err != nil {
		return result{}, storeErr(err)
	}

	if s.Log != nil {
		s.Log.Debug("product created", zap.String("id", p.ID))
	}
	return result{status: http.StatusCreated, body: p}, nil
}

func (s *Server) update(r *http.Request) (result, error) {
	in, found := InputFromContext(r.Context())
	if !found {
		return result{}, errors.New("validated input missing from context")
	}

	p, err := s.Store.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		return result{}, storeErr(err)
	}
	return ok(p), nil
}

func (s *Server) delete(r *http.Request) (result, error) {
	p, err := s.Store.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return result{}, storeErr(err)
	}
	return ok(p), nil
}

func (s *Server) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// storeErr maps store sentinels onto HTTP errors; anything else stays a 500.
func storeErr(err error) error {
	if errors.Is(err, ErrNotFound) {
		he := kit.NotFound(msgProductNotFound)
		he.Err = err
		return he
	}
	return err
}
