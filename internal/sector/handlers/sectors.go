package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"galaxy-server/internal/sector"
	"galaxy-server/internal/shared/errors"
	"galaxy-server/internal/shared/response"
)

type SectorHandler struct {
	service *sector.Service
}

func NewSectorHandler(service *sector.Service) *SectorHandler {
	return &SectorHandler{service: service}
}

// GetSector handles GET /api/sectors/{id}
func (h *SectorHandler) GetSector(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "get_sector")

	if r.Method != http.MethodGet {
		response.Error(w, r, logger, errors.MethodNotAllowed(r.Method))
		return
	}

	idStr := r.PathValue("id")
	if idStr == "" {
		response.Error(w, r, logger, errors.Validation("sector ID is required"))
		return
	}

	sectorID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid sector ID format", err))
		return
	}

	detail, err := h.service.Detail(ctx, sectorID)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, detail)
}
