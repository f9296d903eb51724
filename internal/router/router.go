package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/v2lunch/api/internal/cart"
	"github.com/v2lunch/api/internal/config"
	"github.com/v2lunch/api/internal/database"
	"github.com/v2lunch/api/internal/handler"
	"github.com/v2lunch/api/internal/mail"
	mw "github.com/v2lunch/api/internal/middleware"
	"github.com/v2lunch/api/internal/service"
	"github.com/v2lunch/api/internal/ws"
)

// New creates a Chi router with all application routes wired up:
// the public order wizard, customer account routes, and the admin
// console behind the admin middleware.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub, mailer mail.Sender) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	codec := cart.NewCodec(cfg.JWTSecret)

	// Auth routes (public)
	otpService := service.NewOtpService(queries)
	authHandler := handler.NewAuthHandler(queries, otpService, mailer, codec, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Contact form (public)
	contactHandler := handler.NewContactHandler(mailer, cfg.ContactInbox)
	contactHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require authentication). The wizard lives here:
	// every step redirects anonymous visitors to the login page.
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		orderService := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore {
			return database.New(db)
		})
		wizardHandler := handler.NewWizardHandler(queries, codec, orderService)
		wizardHandler.RegisterRoutes(r)

		authHandler.RegisterAuthedRoutes(r)

		orderHandler := handler.NewOrderHandler(
			queries,
			pool,
			func(db database.DBTX) handler.OrderStore {
				return database.New(db)
			},
			codec,
			hub,
		)
		orderHandler.RegisterRoutes(r)

		announcementHandler := handler.NewAnnouncementHandler(queries)
		announcementHandler.RegisterRoutes(r)

		offerHandler := handler.NewOfferHandler(queries)
		offerHandler.RegisterRoutes(r)

		// Admin console
		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.RequireAdmin)

			adminOrderHandler := handler.NewAdminOrderHandler(
				queries,
				pool,
				func(db database.DBTX) handler.AdminOrderStore {
					return database.New(db)
				},
				hub,
			)
			adminOrderHandler.RegisterRoutes(r)

			menuHandler := handler.NewAdminMenuHandler(queries)
			r.Route("/food-items", menuHandler.RegisterRoutes)

			settingsHandler := handler.NewAdminSettingsHandler(queries)
			settingsHandler.RegisterRoutes(r)

			locationHandler := handler.NewAdminLocationHandler(queries)
			r.Route("/locations", locationHandler.RegisterRoutes)

			announcementAdmin := handler.NewAdminAnnouncementHandler(queries)
			r.Route("/announcements", announcementAdmin.RegisterRoutes)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
