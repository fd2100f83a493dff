package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/nodewatch/nodewatch/pkg/errors"
	httpresponse "github.com/nodewatch/nodewatch/pkg/http/response"
	"github.com/nodewatch/nodewatch/pkg/monitor"
)

// Service is the subset of *monitor.Daemon the control server needs.
// Defined as an interface so handler tests can fake it without spinning
// up a real scheduler.
type Service interface {
	Status() []monitor.StatusView
	StatusOne(ctx context.Context, address string, live bool) (monitor.DetailView, error)
	AddNodes(specs []monitor.NodeSpec) ([]monitor.StatusView, error)
	Revivals() []monitor.RevivalAttempt
}

// Handler serves the monitor's HTTP control surface.
type Handler struct {
	service Service
}

// NewHandler builds a Handler fronting service.
func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Router builds the chi router for the control surface. GET /status and
// POST /add return their literally-specified bodies on success (a raw
// array, and a raw echo object, respectively); every error response and
// every supplemental route uses the uniform success/error envelope.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/status", h.getStatus)
	r.Post("/add", h.postAdd)
	r.Get("/status/{address}", h.getStatusOne)
	r.Get("/revivals", h.getRevivals)
	r.Get("/healthz", h.getHealthz)
	return r
}

// getStatus handles GET /status: a raw JSON array of every node's
// public view, in insertion order.
func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	views := h.service.Status()
	if views == nil {
		views = []monitor.StatusView{}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(views)
}

type addRequest struct {
	Nodes []monitor.NodeSpec `json:"nodes"`
}

type addResponse struct {
	Nodes []monitor.StatusView `json:"nodes"`
}

// postAdd handles POST /add: validates the whole batch before appending
// anything, and echoes the added records on success.
func (h *Handler) postAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpresponse.WriteError(w, errors.NewValidationError("malformed request body", nil))
		return
	}

	added, err := h.service.AddNodes(req.Nodes)
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(addResponse{Nodes: added})
}

// getStatusOne handles GET /status/{address}[?live=1]: the supplemental
// enriched detail route.
func (h *Handler) getStatusOne(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	live := r.URL.Query().Get("live") == "1"

	view, err := h.service.StatusOne(r.Context(), address, live)
	if err != nil {
		httpresponse.WriteError(w, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, httpresponse.Response{Success: true, Data: view})
}

// getRevivals handles GET /revivals: the supplemental revival audit
// trail.
func (h *Handler) getRevivals(w http.ResponseWriter, r *http.Request) {
	trail := h.service.Revivals()
	render.Status(r, http.StatusOK)
	render.JSON(w, r, httpresponse.Response{Success: true, Data: trail})
}

// getHealthz handles GET /healthz: a tiny body once the control server
// itself is accepting connections.
func (h *Handler) getHealthz(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, httpresponse.Response{Success: true, Data: map[string]string{"status": "ok"}})
}
