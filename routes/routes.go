package routes

import (
	"github.com/framefight/arena/handlers"
	"github.com/framefight/arena/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Tournament *handlers.TournamentHandler
	Thumbnail  *handlers.ThumbnailHandler
	Vote       *handlers.VoteHandler
	Profile    *handlers.ProfileHandler
}

func InitRoutes(auth *middleware.Authenticator, h Handlers) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", h.Tournament.ListHandler)
		r.Get("/{tournamentID}", h.Tournament.GetByIDHandler)
		r.Get("/{tournamentID}/bracket", h.Tournament.GetBracketHandler)
		r.Get("/{tournamentID}/thumbnails", h.Thumbnail.ListByTournamentHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/", h.Tournament.CreateHandler)
			r.Post("/{tournamentID}/thumbnails", h.Thumbnail.RegisterHandler)
		})
	})

	router.Route("/thumbnails", func(r chi.Router) {
		r.Get("/{thumbnailID}", h.Thumbnail.GetByIDHandler)
	})

	router.Route("/battles", func(r chi.Router) {
		r.Get("/{battleID}/tally", h.Vote.TallyHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Post("/{battleID}/votes", h.Vote.CastHandler)
		})
	})

	router.Route("/users", func(r chi.Router) {
		r.Get("/{userID}/profile", h.Profile.GetHandler)
		r.Get("/{userID}/transactions", h.Profile.ListTransactionsHandler)
	})

	return router
}
