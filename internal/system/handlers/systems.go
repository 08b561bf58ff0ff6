package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"galaxy-server/internal/shared/errors"
	"galaxy-server/internal/shared/response"
	"galaxy-server/internal/system"
)

type SystemHandler struct {
	service *system.Service
}

func NewSystemHandler(service *system.Service) *SystemHandler {
	return &SystemHandler{service: service}
}

// GetSystems handles GET /api/systems?limit=&offset=
func (h *SystemHandler) GetSystems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_systems")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	var limit, offset int
	var err error
	q := r.URL.Query()
	if raw := q.Get("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid limit", err))
			return
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if offset, err = strconv.Atoi(raw); err != nil {
			response.Error(w, r, logger, errors.WrapValidation("invalid offset", err))
			return
		}
	}

	systems, err := h.service.ListSystems(ctx, limit, offset)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, systems)
}
