package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/actuallystonmai/internship-recommender/internal/auth"
	"github.com/actuallystonmai/internship-recommender/internal/handler"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type Options struct {
	Tokens         *auth.TokenService
	Admins         auth.AdminChecker
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

func Setup(h *handler.Handler, opts Options) http.Handler {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	log := opts.Logger.Named("http")

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	// Routes
	r.Get("/health", h.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(opts.Tokens))

		r.Get("/listings", h.ListListings)
		r.Get("/recommendations/implicit", h.GetImplicitRecommendations)
		r.Post("/recommendations/refine", h.RefineRecommendations)
		r.Get("/users/profile", h.GetProfile)
		r.Put("/users/profile", h.UpdateProfile)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin(opts.Admins, log))

			r.Post("/listings", h.CreateListing)
			r.Put("/listings/{id}", h.UpdateListing)
			r.Delete("/listings/{id}", h.DeleteListing)
			r.Get("/recommendations/preview", h.PreviewRecommendations)
		})
	})

	return r
}

// requestLogger writes one structured entry per request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(start)),
				zap.String("client_ip", r.RemoteAddr),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			}
			if r.URL.RawQuery != "" {
				fields = append(fields, zap.String("query", r.URL.RawQuery))
			}
			if src := ww.Header().Get(handler.SourceHeader); src != "" {
				fields = append(fields, zap.String("source", src))
			}

			switch {
			case status >= http.StatusInternalServerError:
				log.Error("HTTP request", fields...)
			case strings.HasPrefix(r.URL.Path, "/health"):
				log.Debug("HTTP request", fields...)
			default:
				log.Info("HTTP request", fields...)
			}
		})
	}
}
