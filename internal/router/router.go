package router

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hostelgrub/api/internal/config"
	"github.com/hostelgrub/api/internal/enum"
	"github.com/hostelgrub/api/internal/handler"
	mw "github.com/hostelgrub/api/internal/middleware"
	"github.com/hostelgrub/api/internal/service"
	"github.com/hostelgrub/api/internal/store"
	"github.com/hostelgrub/api/internal/ws"
)

// New creates a Chi router with all application routes mounted under /api.
// Student and admin routes are guarded by role-scoped session middleware.
func New(cfg *config.Config, st *store.Store, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	sessions := service.NewSessionService(st)
	orders := service.NewOrderService(st, cfg.OrderPrefix)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok","timestamp":"` + time.Now().UTC().Format(time.RFC3339Nano) + `"}`))
		})

		handler.NewAuthHandler(sessions).RegisterRoutes(r)
		handler.NewMenuHandler(st).RegisterRoutes(r)

		var pub handler.Publisher
		if hub != nil {
			pub = hub
			// WebSocket route (handles auth internally via query param)
			r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
				ws.ServeWS(hub, subscriptionTopic(sessions), w, r)
			})
		}
		orderHandler := handler.NewOrderHandler(orders, pub)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(sessions, enum.RoleStudent))
			orderHandler.RegisterStudentRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(sessions, enum.RoleAdmin))
			orderHandler.RegisterAdminRoutes(r)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}

// subscriptionTopic lets admins follow every order and students follow their own.
func subscriptionTopic(sessions *service.SessionService) ws.Authorizer {
	return func(ctx context.Context, token string) (string, error) {
		if _, err := sessions.ResolveSession(ctx, token, enum.RoleAdmin); err == nil {
			return ws.TopicAdmin, nil
		}
		caller, err := sessions.ResolveSession(ctx, token, enum.RoleStudent)
		if err != nil {
			return "", err
		}
		student := caller.Doc.FindStudentByID(caller.Session.UserID)
		if student == nil {
			return "", service.Unauthorized("invalid student session")
		}
		return ws.StudentTopic(student.Email), nil
	}
}
