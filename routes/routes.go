package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"p9e.in/sitecore/handlers"
	"p9e.in/sitecore/middleware"
	"p9e.in/sitecore/pkg/engine"
	"p9e.in/sitecore/pkg/metrics"
)

// idPattern keeps static segments such as /available from matching {id}.
const idPattern = "{id:[0-9a-fA-F-]{36}}"

// RegisterRoutes sets up all application routes
func RegisterRoutes(svc *engine.Service, m *metrics.Metrics, logger zerolog.Logger, info handlers.BuildInfo) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger, m))

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/health", handlers.NewHealthHandler(info).Health).Methods("GET")
	r.Handle("/metrics", m.Handler()).Methods("GET")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/profile", handlers.GetProfile).Methods("GET")

	registerProjectRoutes(api, handlers.NewProjectHandler(svc))
	registerManpowerRoutes(api, handlers.NewManpowerHandler(svc))
	registerMaterialRoutes(api, handlers.NewMaterialHandler(svc))
	registerProgressRoutes(api, handlers.NewProgressHandler(svc))
	registerFinanceRoutes(api, handlers.NewFinanceHandler(svc))
	registerLocationRoutes(api, handlers.NewLocationHandler(svc))

	api.Handle("/audit", middleware.RequireAdmin(handlers.NewAuditHandler(svc).RunAudit)).Methods("GET")

	return r
}

type crudHandlers struct {
	list   http.HandlerFunc
	create http.HandlerFunc
	get    http.HandlerFunc
	update http.HandlerFunc
	delete http.HandlerFunc
	// adminWrites puts create, update and delete behind the admin role
	adminWrites bool
}

// registerCRUDRoutes registers standard CRUD routes for a resource
func registerCRUDRoutes(router *mux.Router, path string, h crudHandlers) {
	write := func(next http.HandlerFunc) http.Handler {
		if h.adminWrites {
			return middleware.RequireAdmin(next)
		}
		return next
	}

	// GET all
	router.Handle(path, h.list).Methods("GET")

	// POST create
	router.Handle(path, write(h.create)).Methods("POST")

	// GET one by ID
	router.Handle(path+"/"+idPattern, h.get).Methods("GET")

	// PUT update
	router.Handle(path+"/"+idPattern, write(h.update)).Methods("PUT")

	// DELETE
	router.Handle(path+"/"+idPattern, write(h.delete)).Methods("DELETE")
}

func registerProjectRoutes(api *mux.Router, h *handlers.ProjectHandler) {
	registerCRUDRoutes(api, "/projects", crudHandlers{
		list:        h.GetProjects,
		create:      h.CreateProject,
		get:         h.GetProject,
		update:      h.UpdateProject,
		delete:      h.DeleteProject,
		adminWrites: true,
	})
}

func registerManpowerRoutes(api *mux.Router, h *handlers.ManpowerHandler) {
	api.HandleFunc("/manpower/available", h.GetAvailableManpower).Methods("GET")
	registerCRUDRoutes(api, "/manpower", crudHandlers{
		list:        h.GetManpower,
		create:      h.CreateManpower,
		get:         h.GetManpowerByID,
		update:      h.UpdateManpower,
		delete:      h.DeleteManpower,
		adminWrites: true,
	})
	api.Handle("/manpower/"+idPattern+"/assign", middleware.RequireAdmin(h.AssignManpower)).Methods("POST")
	api.Handle("/manpower/"+idPattern+"/unassign", middleware.RequireAdmin(h.UnassignManpower)).Methods("POST")
}

func registerMaterialRoutes(api *mux.Router, h *handlers.MaterialHandler) {
	api.HandleFunc("/materials/available", h.GetAvailableMaterials).Methods("GET")
	api.HandleFunc("/materials/required", h.GetRequiredMaterials).Methods("GET")
	registerCRUDRoutes(api, "/materials", crudHandlers{
		list:   h.GetMaterials,
		create: h.CreateMaterial,
		get:    h.GetMaterial,
		update: h.UpdateMaterial,
		delete: h.DeleteMaterial,
	})
}

func registerProgressRoutes(api *mux.Router, h *handlers.ProgressHandler) {
	api.HandleFunc("/progress", h.GetProgress).Methods("GET")
	api.HandleFunc("/progress", h.SubmitProgress).Methods("POST")
	api.HandleFunc("/progress/project/{projectId}", h.GetProjectProgress).Methods("GET")
	api.HandleFunc("/progress/"+idPattern, h.UpdateProgress).Methods("PUT")
}

func registerFinanceRoutes(api *mux.Router, h *handlers.FinanceHandler) {
	api.Handle("/finance", middleware.RequireAdmin(h.GetFinances)).Methods("GET")
	api.Handle("/finance", middleware.RequireAdmin(h.CreateFinance)).Methods("POST")
	api.Handle("/finance/summary", middleware.RequireAdmin(h.GetSummary)).Methods("GET")
	api.Handle("/finance/summary/export", middleware.RequireAdmin(h.ExportSummary)).Methods("GET")
	api.HandleFunc("/finance/project/{projectId}", h.GetProjectFinance).Methods("GET")
	api.Handle("/finance/"+idPattern, middleware.RequireAdmin(h.UpdateFinance)).Methods("PUT")
}

func registerLocationRoutes(api *mux.Router, h *handlers.LocationHandler) {
	api.HandleFunc("/location", h.GetLocations).Methods("GET")
	api.HandleFunc("/location", h.UpdateLocation).Methods("PUT")
	// path the mobile client reports to
	api.HandleFunc("/auth/update-location", h.UpdateLocation).Methods("PUT")
	api.HandleFunc("/location/user/{userId}", h.GetUserLocation).Methods("GET")
}
