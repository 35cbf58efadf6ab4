package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/techappsUT/planer/internal/objectstore"
	"github.com/techappsUT/planer/internal/platform"
	"github.com/techappsUT/planer/internal/publicshare"
	"github.com/techappsUT/planer/internal/sharelink"
	"github.com/techappsUT/planer/internal/store"
	"github.com/techappsUT/planer/internal/tenancy"
)

// Server bundles everything a handler needs. Handlers are methods on
// *Server rather than free functions so the whole surface shares one
// dependency set, mirroring the teacher's container-injected-into-router
// idiom (cmd/api/container.go) without its per-feature handler structs.
type Server struct {
	log *zap.Logger

	publications store.PublicationStore
	contents     store.ContentStore
	calendars    store.CalendarStore
	accounts     store.SocialAccountStore

	registry  *platform.Registry
	objects   objectstore.Gateway
	links     *sharelink.Service
	shares    *publicshare.Service

	maxMediaPerContent int
	secureCookies      bool
}

type Config struct {
	MaxMediaPerContent int
	SecureCookies      bool
	CORSOrigins        []string
	ClientHintHeader   string
}

func New(
	cfg Config,
	log *zap.Logger,
	resolver *tenancy.Resolver,
	publications store.PublicationStore,
	contents store.ContentStore,
	calendars store.CalendarStore,
	accounts store.SocialAccountStore,
	registry *platform.Registry,
	objects objectstore.Gateway,
	links *sharelink.Service,
	shares *publicshare.Service,
) http.Handler {
	s := &Server{
		log: log, publications: publications, contents: contents, calendars: calendars,
		accounts: accounts, registry: registry, objects: objects, links: links, shares: shares,
		maxMediaPerContent: cfg.MaxMediaPerContent, secureCookies: cfg.SecureCookies,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(securityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Client-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/", func(r chi.Router) {
		r.Use(tenancy.Middleware(resolver, routeOptionsFor, cfg.ClientHintHeader))

		r.Route("/publications", func(r chi.Router) {
			r.Post("/", s.createPublication)
			r.Get("/", s.listPublications)
			r.Get("/{id}", s.getPublication)
			r.Put("/{id}", s.updatePublication)
			r.Delete("/{id}", s.deletePublication)
		})

		r.Route("/contents", func(r chi.Router) {
			r.Post("/", s.createContent)
			r.Get("/{contentId}", s.getContent)
			r.Delete("/{contentId}", s.deleteContent)
			r.Post("/{contentId}/media", s.uploadMedia)
			r.Delete("/{contentId}/media/{mediaId}", s.deleteMedia)
		})

		r.Route("/calendars", func(r chi.Router) {
			r.Post("/", s.createCalendar)
			r.Get("/{calendarId}", s.getCalendar)
			r.Delete("/{calendarId}", s.deleteCalendar)
			r.Put("/{calendarId}/columns", s.reorderColumns)

			r.With(httprate.LimitByIP(20, time.Hour)).Post("/{calendarId}/share-links", s.createShareLink)
			r.Delete("/{calendarId}/share-links/{linkId}", s.revokeShareLink)
			r.Post("/{calendarId}/share-links/{linkId}/regenerate", s.regenerateShareLink)
		})
	})

	r.Route("/shared/{token}", func(r chi.Router) {
		r.Use(httprate.LimitByIP(60, time.Minute))
		r.Get("/", s.getSharedCalendar)
		r.Get("/comments", s.listComments)
		r.Post("/comments", s.createComment)
		r.Patch("/comments/{commentId}", s.updateComment)
		r.Delete("/comments/{commentId}", s.deleteComment)
	})

	return r
}

// routeOptionsFor implements spec §4.1's per-route IsPublic/SkipClientValidation
// flags. Only the /shared/... tree (mounted outside this route group
// entirely, see New) is public; every route under this group is tenanted.
func routeOptionsFor(r *http.Request) tenancy.RouteOptions {
	return tenancy.RouteOptions{}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
