package routes

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hexisle/island-conquest/handlers"
	"github.com/hexisle/island-conquest/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

//go:embed openapi.json
var openapiDoc []byte

// SetupRoutes mounts the full HTTP surface: public read endpoints for the
// dashboard, JWT-gated admin authoring endpoints, the websocket subscription
// endpoint, and API docs.
func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	liveGameHandler *handlers.LiveGameHandler,
	playerHandler *handlers.PlayerHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/signin", authHandler.SignInHandler)

	router.Route("/tournaments", func(r chi.Router) {
		// Public routes for spectator dashboards.
		r.Get("/", tournamentHandler.ListHandler)
		r.Get("/{tournamentID}", tournamentHandler.GetByIDHandler)
		r.Get("/{tournamentID}/sessions", tournamentHandler.ListSessionsHandler)
		r.Get("/{tournamentID}/players", playerHandler.ListHandler)
		r.Get("/{tournamentID}/leaderboard", playerHandler.LeaderboardHandler)

		// The scheduler check endpoint is deliberately unauthenticated:
		// every connected client, admin or player, is an equal poller.
		r.Post("/{tournamentID}/scheduler/check", tournamentHandler.SchedulerCheckHandler)

		// Admin-console routes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/", tournamentHandler.CreateHandler)
			r.Put("/{tournamentID}", tournamentHandler.UpdateHandler)
			r.Delete("/{tournamentID}", tournamentHandler.DeleteHandler)
			r.Patch("/{tournamentID}/status", tournamentHandler.StatusHandler)
			r.Post("/{tournamentID}/sessions", tournamentHandler.GenerateSessionsHandler)
			r.Put("/{tournamentID}/logo", tournamentHandler.UploadLogoHandler)
			r.Put("/{tournamentID}/teams/{side}/icon", tournamentHandler.UploadTeamIconHandler)
		})
	})

	router.Get("/games/{gameID}", liveGameHandler.GetByIDHandler)

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(openapiDoc)
	})
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}
