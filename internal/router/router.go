package router

import (
	"net/http"

	"internhub/internal/config"
	"internhub/internal/database"
	"internhub/internal/handlers/api/v1/alerts"
	"internhub/internal/handlers/api/v1/applications"
	"internhub/internal/handlers/api/v1/auth"
	"internhub/internal/handlers/api/v1/forum"
	"internhub/internal/handlers/api/v1/opportunities"
	"internhub/internal/handlers/api/v1/resources"
	"internhub/internal/handlers/api/v1/reviews"
	"internhub/internal/middleware"
	"internhub/internal/models"
	"internhub/internal/push"
	"internhub/internal/response"
	"internhub/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// Dependencies carries everything the router wires together
type Dependencies struct {
	Config   *config.Config
	Database *database.Manager
	Services *services.Collection
	Hub      *push.Hub
	Builder  *response.Builder
	Logger   *zap.Logger
}

// New assembles the full HTTP surface
func New(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Recover(deps.Logger, deps.Builder))
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowedMethods:   deps.Config.CORS.AllowedMethods,
		AllowedHeaders:   deps.Config.CORS.AllowedHeaders,
		AllowCredentials: true,
	}).Handler)

	authn := middleware.NewAuthenticator(deps.Services.Auth, deps.Builder)

	authController := auth.NewController(deps.Services, deps.Logger, deps.Builder)
	oppController := opportunities.NewController(deps.Services, deps.Logger, deps.Builder)
	appController := applications.NewController(deps.Services, deps.Logger, deps.Builder)
	reviewController := reviews.NewController(deps.Services, deps.Logger, deps.Builder)
	resourceController := resources.NewController(deps.Services, deps.Logger, deps.Builder)
	forumController := forum.NewController(deps.Services, deps.Logger, deps.Builder)
	alertController := alerts.NewController(deps.Services, deps.Logger, deps.Builder)

	r.Get("/health", healthHandler(deps.Database, deps.Builder))

	r.Route("/api/v1", func(r chi.Router) {
		// Accounts
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authController.Register)
			r.Post("/register-company", authController.RegisterOrganization)
			r.Post("/login", authController.Login)

			r.Group(func(r chi.Router) {
				r.Use(authn.Require)
				r.Get("/me", authController.Me)
				r.Put("/me", authController.UpdateProfile)
				r.Put("/password", authController.ChangePassword)
			})
		})

		// Public catalog. Static paths register before /{id} so chi
		// matches them first.
		r.Route("/opportunities", func(r chi.Router) {
			r.With(authn.Optional).Get("/", oppController.Search)
			r.Get("/featured", oppController.Featured)
			r.Get("/stats", oppController.Stats)
			r.With(authn.RequireRole(models.RoleStudent)).Get("/my-applications", appController.Mine)
			r.Get("/{id}", oppController.Get)

			r.With(authn.RequireRole(models.RoleOrganization)).Post("/", oppController.Create)
			r.With(authn.RequireRole(models.RoleOrganization)).Put("/{id}", oppController.Update)
			r.With(authn.RequireRole(models.RoleOrganization)).Delete("/{id}", oppController.Delete)
			r.With(authn.RequireRole(models.RoleOrganization)).Get("/{id}/applications", appController.ForOpportunity)

			r.With(authn.RequireRole(models.RoleStudent)).Post("/{id}/apply", appController.Apply)
		})

		// Ledger
		r.With(authn.Require).Get("/applications/{id}", appController.Get)

		// Owner surfaces
		r.Route("/organizations", func(r chi.Router) {
			r.Use(authn.RequireRole(models.RoleOrganization))
			r.Get("/opportunities", oppController.Mine)
			r.Put("/applications/{id}/status", appController.UpdateStatus)
		})

		// Reviews
		r.Route("/reviews", func(r chi.Router) {
			r.Get("/", reviewController.List)
			r.Get("/{id}", reviewController.Get)
			r.With(authn.RequireRole(models.RoleStudent)).Post("/", reviewController.Create)
			r.With(authn.RequireRole(models.RoleStudent)).Put("/{id}", reviewController.Update)
			r.With(authn.RequireRole(models.RoleStudent)).Delete("/{id}", reviewController.Delete)
		})

		// Resources
		r.Route("/resources", func(r chi.Router) {
			r.Get("/", resourceController.List)
			r.Get("/{id}", resourceController.Get)
			r.With(authn.RequireRole(models.RoleOrganization)).Post("/", resourceController.Create)
			r.With(authn.RequireRole(models.RoleOrganization)).Put("/{id}", resourceController.Update)
			r.With(authn.RequireRole(models.RoleOrganization)).Delete("/{id}", resourceController.Delete)
		})

		// Forum
		r.Route("/forum", func(r chi.Router) {
			r.Get("/posts", forumController.ListPosts)
			r.Get("/posts/{id}", forumController.GetPost)

			r.Group(func(r chi.Router) {
				r.Use(authn.Require)
				r.Post("/posts", forumController.CreatePost)
				r.Put("/posts/{id}", forumController.UpdatePost)
				r.Delete("/posts/{id}", forumController.DeletePost)
				r.Post("/posts/{id}/like", forumController.LikePost)
				r.Post("/posts/{id}/replies", forumController.Reply)
				r.Delete("/replies/{replyID}", forumController.DeleteReply)
			})
		})

		// Email alerts
		r.Route("/alerts", func(r chi.Router) {
			r.Use(authn.RequireRole(models.RoleStudent))
			r.Get("/", alertController.List)
			r.Post("/", alertController.Create)
			r.Get("/{id}", alertController.Get)
			r.Put("/{id}", alertController.Update)
			r.Delete("/{id}", alertController.Delete)
		})

		// Real-time push
		r.With(authn.Require).Get("/ws", deps.Hub.ServeHTTP)
	})

	return r
}

func healthHandler(db *database.Manager, builder *response.Builder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		health := db.Health(r.Context())
		status := http.StatusOK
		if health.Status == database.StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		builder.WriteJSON(w, r, builder.Success(r.Context(), health), status)
	}
}
