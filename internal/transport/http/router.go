package http

import (
	"net/http"

	"github.com/aarsha-api/internal/application/auth"
	"github.com/aarsha-api/internal/application/catalog"
	"github.com/aarsha-api/internal/application/wishlist"
	"github.com/aarsha-api/internal/config"
	"github.com/aarsha-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/aarsha-api/internal/infrastructure/jwt"
	s3infra "github.com/aarsha-api/internal/infrastructure/s3"
	"github.com/aarsha-api/internal/infrastructure/smtp"
	"github.com/aarsha-api/internal/transport/http/handler"
	appmiddleware "github.com/aarsha-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	BookRepo          *dynamo.BookRepo
	ChapterRepo       *dynamo.ChapterRepo
	ChapterDetailRepo *dynamo.ChapterDetailRepo
	WishlistRepo      *dynamo.WishlistRepo
	UserRepo          *dynamo.UserRepo
	OTPRepo           *dynamo.OTPRepo
	CoverStore        *s3infra.Store
	Mailer            smtp.Mailer
	JWTProvider       *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to the OTP endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		OTPRepo:  deps.OTPRepo,
		UserRepo: deps.UserRepo,
		Mailer:   deps.Mailer,
		Signer:   deps.JWTProvider,
		OTPTTL:   cfg.OTPTTL,
	})
	catalogSvc := catalog.NewService(catalog.ServiceDeps{
		Books:    deps.BookRepo,
		Chapters: deps.ChapterRepo,
		Details:  deps.ChapterDetailRepo,
		Covers:   deps.CoverStore,
	})
	wishlistSvc := wishlist.NewService(wishlist.ServiceDeps{
		Store: deps.WishlistRepo,
		Books: deps.BookRepo,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	wishlistH := handler.NewWishlistHandler(wishlistSvc)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health-check/{action}", healthH.Ping)
	r.With(sensitiveRL.Limit).Post("/register", authH.Register)
	r.With(sensitiveRL.Limit).Post("/verify-otp", authH.VerifyOTP)
	r.Get("/books", catalogH.ListBooks)
	r.Get("/chapters/{bookId}", catalogH.ListChapters)
	r.Get("/chapter-details/{bookId}/{chapterId}", catalogH.GetChapterDetail)

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(appmiddleware.Auth(deps.JWTProvider))

		r.Post("/add-books", catalogH.CreateBook)
		r.Put("/update-books/{id}", catalogH.UpdateBook)
		r.Post("/books/{id}/cover", catalogH.UploadCover)
		r.Post("/add-chapter", catalogH.AddChapter)
		r.Put("/update-chapter/{bookId}/{pageNumber}", catalogH.UpdateChapter)
		r.Post("/upsert-chapter-details", catalogH.UpsertChapterDetail)

		r.Get("/wishlist", wishlistH.List)
		r.Post("/wishlist", wishlistH.Add)
		r.Delete("/wishlist/{bookId}", wishlistH.Remove)
	})

	return r
}
