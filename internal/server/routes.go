package server

import (
	"log/slog"
	"net/http"

	"galaxy-server/internal/galaxy"
	galaxyHandlers "galaxy-server/internal/galaxy/handlers"
	"galaxy-server/internal/middleware"
	"galaxy-server/internal/sector"
	sectorHandlers "galaxy-server/internal/sector/handlers"
	serverHandlers "galaxy-server/internal/server/handlers"
	"galaxy-server/internal/shared/database"
	"galaxy-server/internal/system"
	systemHandlers "galaxy-server/internal/system/handlers"
)

type Routes struct {
	db            *database.DB
	galaxyService *galaxy.Service
	sectorService *sector.Service
	systemService *system.Service
	auth          *middleware.Auth
}

func NewRoutes(db *database.DB, galaxyService *galaxy.Service, sectorService *sector.Service, systemService *system.Service, auth *middleware.Auth) *Routes {
	return &Routes{
		db:            db,
		galaxyService: galaxyService,
		sectorService: sectorService,
		systemService: systemService,
		auth:          auth,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := slog.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db)
	galaxyHandler := galaxyHandlers.NewGalaxyHandler(r.galaxyService)
	sectorHandler := sectorHandlers.NewSectorHandler(r.sectorService)
	systemHandler := systemHandlers.NewSystemHandler(r.systemService)

	public := []struct {
		pattern string
		handler http.Handler
	}{
		{"/api/server/health", healthHandler},
		{"/api/galaxy/stats", http.HandlerFunc(galaxyHandler.GetStats)},
		{"GET /api/sectors/roots", http.HandlerFunc(galaxyHandler.GetRoots)},
		{"GET /api/sectors/{id}", http.HandlerFunc(sectorHandler.GetSector)},
		{"/api/systems", http.HandlerFunc(systemHandler.GetSystems)},
	}

	admin := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"POST /api/galaxies", galaxyHandler.Generate},
		{"POST /api/sectors", galaxyHandler.ExpandSector},
		{"POST /api/sectors/{id}/futures", galaxyHandler.CreateFuture},
		{"POST /api/sectors/{id}/resume", galaxyHandler.ResumeSector},
		{"DELETE /api/sectors/{id}", galaxyHandler.DeleteSector},
		{"POST /api/futures/{id}/fulfill", galaxyHandler.FulfillFuture},
	}

	publicPatterns := make([]string, 0, len(public))
	for _, route := range public {
		mux.Handle(route.pattern, route.handler)
		publicPatterns = append(publicPatterns, route.pattern)
	}

	adminPatterns := make([]string, 0, len(admin))
	for _, route := range admin {
		mux.Handle(route.pattern, r.auth.RequireAdmin(route.handler))
		adminPatterns = append(adminPatterns, route.pattern)
	}

	logger.Info("Routes configured successfully",
		"public_endpoints", publicPatterns,
		"admin_endpoints", adminPatterns,
	)

	return mux
}
