package handler

import (
	"net/http"

	"github.com/bbernstein/chargemap/internal/api"
	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the HTTP endpoints on router.
func (h *StationsHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/stations/nearby", h.Nearby).Methods(http.MethodGet)
}

func (h *StationsHandler) Health(w http.ResponseWriter, _ *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Nearby serves GET /stations/nearby?lat=..&lon=..
func (h *StationsHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	params := make(map[string]string, len(query))
	for key := range query {
		params[key] = query.Get(key)
	}

	user, err := api.ParseCoordinates(params)
	if err != nil {
		api.WriteJSON(w, api.StatusCode(err), api.NewErrorResponse(err.Error()))
		return
	}

	result, err := h.locate(r.Context(), user)
	if err != nil {
		api.WriteJSON(w, api.StatusCode(err), api.NewErrorResponse(api.ErrorMessage(err)))
		return
	}
	api.WriteJSON(w, http.StatusOK, api.NewStationsResponse(result))
}

// NewRouter returns a router with every route and the logging middleware.
func NewRouter(h *StationsHandler) *mux.Router {
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	router.Use(Recovery, Logging)
	return router
}
