package user

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/tenancy/internal/httpjson"
	"github.com/dmitrymomot/tenancy/pkg/logger"
	"github.com/dmitrymomot/tenancy/pkg/scope"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

type Handler struct {
	repo   *Repository
	logger *slog.Logger
}

func NewHandler(repo *Repository, log *slog.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{repo: repo, logger: log}
}

// Routes mounts under /users behind tenant.Middleware.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	perPage := min(queryInt(r, "per_page", defaultPerPage), maxPerPage)

	l, err := h.repo.List(r.Context(), page, perPage)
	if err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	httpjson.Write(w, http.StatusOK, l.Users, map[string]any{
		"total": l.Total, "page": l.Page, "per_page": l.PerPage, "pages": l.Pages,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := h.repo.Find(r.Context(), id)
	if err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	httpjson.Write(w, http.StatusOK, u, nil)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var p CreateParams
	if err := httpjson.Decode(r, &p); err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	u, err := h.repo.Create(r.Context(), p)
	if err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	httpjson.Write(w, http.StatusCreated, u, nil)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var p UpdateParams
	if err := httpjson.Decode(r, &p); err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	u, err := h.repo.Update(r.Context(), id, p)
	if err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	httpjson.Write(w, http.StatusOK, u, nil)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		httpjson.Error(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpjson.Error(w, r, nil, scope.ErrNotFound)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}
