package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tradedeskhq/tradedesk-backend/api/controllers"
	"github.com/tradedeskhq/tradedesk-backend/api/middleware"
	"github.com/tradedeskhq/tradedesk-backend/internal/activity"
	"github.com/tradedeskhq/tradedesk-backend/internal/dashboard"
	"github.com/tradedeskhq/tradedesk-backend/internal/pdf"
	product "github.com/tradedeskhq/tradedesk-backend/internal/products"
	quotation "github.com/tradedeskhq/tradedesk-backend/internal/quotations"
	user "github.com/tradedeskhq/tradedesk-backend/internal/users"
	"github.com/tradedeskhq/tradedesk-backend/pkg/auth/session"
	"github.com/tradedeskhq/tradedesk-backend/pkg/config"
	"github.com/tradedeskhq/tradedesk-backend/pkg/db"
	"github.com/tradedeskhq/tradedesk-backend/pkg/enums"
	"github.com/tradedeskhq/tradedesk-backend/pkg/logger"
	"github.com/tradedeskhq/tradedesk-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        db.Pinger
	Redis     *redis.Client
	Sessions  session.AccessSessionChecker
	Users     user.Service
	Products  product.Service
	Quotes    quotation.Service
	Assembler *quotation.Assembler
	PDFChain  *pdf.Chain
	Recorder  *activity.Recorder
	Dashboard *dashboard.Service
}

// NewRouter assembles the complete route tree.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/quotations/{quotationId}/pdf", controllers.PublicQuotationPDF(d.Assembler, d.Recorder, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).
			Post("/login", controllers.AuthLogin(d.Users, d.Recorder, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Users, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
			r.Post("/logout", controllers.AuthLogout(d.Users, d.Recorder, logg))
			r.Post("/password", controllers.AuthChangePassword(d.Users, d.Recorder, logg))
			r.Get("/me", controllers.AuthMe(d.Users, logg))
		})
	})

	// a typed nil *redis.Client must not leak into the interface value
	var idemStore redis.IdempotencyStore
	if d.Redis != nil {
		idemStore = d.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(d.Products, logg))
			r.Get("/low-stock", controllers.ListLowStockProducts(d.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(d.Products, logg))
			r.Post("/", controllers.CreateProduct(d.Products, d.Recorder, logg))
			r.Patch("/{productId}", controllers.UpdateProduct(d.Products, d.Recorder, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(d.Products, d.Recorder, logg))
		})

		r.Route("/quotations", func(r chi.Router) {
			r.Get("/", controllers.ListQuotations(d.Quotes, logg))
			r.Post("/", controllers.CreateQuotation(d.Quotes, d.Recorder, logg))
			r.Get("/{quotationId}", controllers.GetQuotation(d.Quotes, logg))
			r.Post("/{quotationId}/send", controllers.MarkQuotationSent(d.Quotes, d.Recorder, logg))
			r.Post("/{quotationId}/cancel", controllers.CancelQuotation(d.Quotes, d.Recorder, logg))
			r.Get("/{quotationId}/pdf", controllers.QuotationPDF(d.Assembler, d.PDFChain, d.Recorder, logg))
			r.Get("/{quotationId}/preview", controllers.QuotationPDFPreview(d.Assembler, logg))
			r.With(middleware.RequireRole(enums.UserRoleManager.String(), logg)).
				Delete("/{quotationId}", controllers.DeleteQuotation(d.Quotes, d.Recorder, logg))
		})

		r.Get("/dashboard", controllers.DashboardSummary(d.Dashboard, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleManager.String(), logg))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.ListUsers(d.Users, logg))
				r.Post("/", controllers.CreateUser(d.Users, d.Recorder, logg))
				r.Get("/{userId}", controllers.GetUser(d.Users, logg))
				r.Patch("/{userId}", controllers.UpdateUser(d.Users, d.Recorder, logg))
				r.Post("/{userId}/deactivate", controllers.DeactivateUser(d.Users, d.Recorder, logg))
			})

			r.Get("/activity", controllers.ListActivity(d.Recorder, logg))
		})
	})

	return r
}
