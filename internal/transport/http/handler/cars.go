package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"motorvault-api/internal/domain"
	"motorvault-api/internal/feed"
	"motorvault-api/internal/filter"
	"motorvault-api/internal/gateway"
	"motorvault-api/internal/store"
	"motorvault-api/internal/transport/http/response"
	"motorvault-api/internal/workflow"
	"motorvault-api/pkg/apierror"
)

// CarsHandler serves the catalog: the public filtered view plus the
// operator mutations. Reads come from the feed's live cache; writes go
// through the mutation gateway and only show up once the subscription
// delivers them back.
type CarsHandler struct {
	feed    *feed.Feed
	gateway *gateway.Gateway
	store   store.Store
}

// NewCarsHandler creates a new cars handler.
func NewCarsHandler(f *feed.Feed, gw *gateway.Gateway, s store.Store) *CarsHandler {
	return &CarsHandler{feed: f, gateway: gw, store: s}
}

// ListResponse is the public catalog payload.
type ListResponse struct {
	Cars  []domain.Car `json:"cars"`
	Total int          `json:"total"`
}

// List handles GET /api/v1/cars?q=...&max_price=...
// Serves the filtered snapshot; if the live subscription has died the
// cache is stale, so the error state is surfaced instead of old data.
func (h *CarsHandler) List(w http.ResponseWriter, r *http.Request) {
	if err := h.feed.Err(); err != nil {
		response.Error(w, err)
		return
	}

	criteria := filter.Criteria{
		Search:   r.URL.Query().Get("q"),
		MaxPrice: r.URL.Query().Get("max_price"),
	}
	cars := filter.Apply(h.feed.Snapshot(), criteria)

	response.OK(w, ListResponse{Cars: cars, Total: len(cars)})
}

// Detail handles GET /api/v1/cars/{id}
func (h *CarsHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.Error(w, apierror.BadRequest("id is required"))
		return
	}

	car, err := h.store.GetOne(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, car)
}

// MutationResponse reports the outcome of a create/update/delete.
type MutationResponse struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

// Create handles POST /api/v1/cars
func (h *CarsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input domain.CarInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	id, err := h.gateway.Create(r.Context(), input)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, MutationResponse{ID: id, Message: "Car added successfully!"})
}

// Update handles PUT /api/v1/cars/{id}
// The edit runs through the draft workflow: the source record is copied
// out of the feed cache, the submitted fields replace the draft, and the
// confirmation issues the store update.
func (h *CarsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var input domain.CarInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	source := h.sourceRecord(id)

	wf := workflow.New(h.gateway)
	if err := wf.OpenEdit(source); err != nil {
		response.Error(w, err)
		return
	}
	if err := wf.SetDraft(input); err != nil {
		response.Error(w, err)
		return
	}

	outcome := wf.ConfirmEdit(r.Context())
	if outcome.Err != nil {
		response.Error(w, outcome.Err)
		return
	}
	response.OK(w, MutationResponse{ID: id, Message: outcome.Message})
}

// Delete handles DELETE /api/v1/cars/{id}
// Always two-step: the deletion is requested against the target record,
// then confirmed. Deleting a record that is already gone succeeds.
func (h *CarsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	wf := workflow.New(h.gateway)
	if err := wf.RequestDelete(h.sourceRecord(id)); err != nil {
		response.Error(w, err)
		return
	}

	outcome := wf.ConfirmDelete(r.Context())
	if outcome.Err != nil {
		response.Error(w, outcome.Err)
		return
	}
	response.OK(w, MutationResponse{ID: id, Message: outcome.Message})
}

// sourceRecord resolves the target from the feed cache. A record missing
// from the cache still gets a bare reference: whether it exists is decided
// by the store when the mutation lands, not checked up front.
func (h *CarsHandler) sourceRecord(id string) domain.Car {
	for _, car := range h.feed.Snapshot() {
		if car.ID == id {
			return car
		}
	}
	return domain.Car{ID: id}
}
