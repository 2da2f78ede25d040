package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/angelmondragon/storefront-client/api/controllers"
	"github.com/angelmondragon/storefront-client/api/middleware"
	"github.com/angelmondragon/storefront-client/internal/account"
	"github.com/angelmondragon/storefront-client/internal/cart"
	"github.com/angelmondragon/storefront-client/internal/checkout"
	"github.com/angelmondragon/storefront-client/internal/favorites"
	"github.com/angelmondragon/storefront-client/internal/focus"
	"github.com/angelmondragon/storefront-client/internal/orders"
	"github.com/angelmondragon/storefront-client/internal/session"
	"github.com/angelmondragon/storefront-client/pkg/config"
	"github.com/angelmondragon/storefront-client/pkg/logger"
)

// Deps are the services mounted on the bridge.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	Store     controllers.Pinger
	Metrics   prometheus.Gatherer
	Screens   *focus.Registry
	Session   *session.Manager
	Catalog   controllers.CatalogReader
	Cart      cart.Service
	Favorites favorites.Service
	Account   account.Service
	Checkout  checkout.Service
	Orders    orders.Service
}

// NewRouter builds the HTTP bridge the screens talk to.
func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, d.Store, logg))
	})
	if d.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.SessionUser(d.Session, logg),
			middleware.ScreenLease(d.Screens, logg),
		)

		r.Route("/screens/{screen}", func(r chi.Router) {
			r.Post("/focus", controllers.ScreenFocus(d.Screens, logg))
			r.Post("/blur", controllers.ScreenBlur(d.Screens, logg))
		})

		r.Get("/session", controllers.SessionStatus(d.Session, logg))
		r.Route("/account", func(r chi.Router) {
			r.Post("/sign-in", controllers.AccountSignIn(d.Account, logg))
			r.Post("/sign-out", controllers.AccountSignOut(d.Account, logg))
			r.Post("/sign-up", controllers.AccountSignUp(d.Account, logg))
			r.Post("/forgot-password", controllers.AccountForgotPassword(d.Account, logg))
			r.Get("/profile", controllers.AccountProfile(d.Account, logg))
			r.Put("/profile", controllers.AccountUpdateProfile(d.Account, logg))
		})

		r.Get("/categories", controllers.CategoriesList(d.Catalog, logg))
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(d.Catalog, logg))
			r.Get("/newest", controllers.ProductsNewest(d.Catalog, logg))
			r.Get("/top-purchased", controllers.ProductsTopPurchased(d.Catalog, logg))
			r.Get("/{productId}", controllers.ProductDetail(d.Catalog, logg))
			r.Get("/{productId}/reviews", controllers.ProductReviews(d.Catalog, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(d.Cart, logg))
			r.Delete("/", controllers.CartClear(d.Cart, logg))
			r.Get("/count", controllers.CartCount(d.Cart, logg))
			r.Post("/items", controllers.CartAdd(d.Cart, d.Catalog, logg))
			r.Put("/items/{productId}", controllers.CartSetQuantity(d.Cart, logg))
			r.Delete("/items/{productId}", controllers.CartRemove(d.Cart, logg))
			r.Post("/items/{productId}/increase", controllers.CartIncrease(d.Cart, logg))
			r.Post("/items/{productId}/decrease", controllers.CartDecrease(d.Cart, logg))
		})

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", controllers.FavoritesList(d.Favorites, logg))
			r.Delete("/", controllers.FavoritesClear(d.Favorites, logg))
			r.Get("/ids", controllers.FavoritesIDs(d.Favorites, logg))
			r.Post("/toggle", controllers.FavoritesToggle(d.Favorites, d.Catalog, logg))
			r.Delete("/{productId}", controllers.FavoritesRemove(d.Favorites, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/quote", controllers.CheckoutQuote(d.Checkout, logg))
			r.Post("/orders", controllers.CheckoutPlaceOrder(d.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersHistory(d.Orders, logg))
			r.Post("/{orderId}/confirm-delivery", controllers.OrdersConfirmDelivery(d.Orders, logg))
		})
	})

	return otelhttp.NewHandler(r, "storefront-bridge")
}
