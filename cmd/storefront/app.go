package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/storefront-client/api/routes"
	"github.com/angelmondragon/storefront-client/internal/account"
	"github.com/angelmondragon/storefront-client/internal/cart"
	"github.com/angelmondragon/storefront-client/internal/catalog"
	"github.com/angelmondragon/storefront-client/internal/checkout"
	"github.com/angelmondragon/storefront-client/internal/collection"
	"github.com/angelmondragon/storefront-client/internal/favorites"
	"github.com/angelmondragon/storefront-client/internal/focus"
	"github.com/angelmondragon/storefront-client/internal/orders"
	"github.com/angelmondragon/storefront-client/internal/session"
	"github.com/angelmondragon/storefront-client/pkg/config"
	"github.com/angelmondragon/storefront-client/pkg/keylock"
	"github.com/angelmondragon/storefront-client/pkg/kvstore"
	"github.com/angelmondragon/storefront-client/pkg/logger"
	"github.com/angelmondragon/storefront-client/pkg/metrics"
)

// buildDeps wires every service over one opened backend. Cart and favorites share a locker
// so all per-user writes on the device are serialized by storage key.
func buildDeps(cfg *config.Config, logg *logger.Logger, backend *kvstore.Backend) (routes.Deps, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collectionMetrics := metrics.NewCollectionMetrics(reg)
	locker := keylock.New()

	sess, err := session.NewManager(backend.Store, logg)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("session: %w", err)
	}

	api, err := catalog.NewClient(cfg.API.BaseURL,
		catalog.WithTimeout(cfg.API.Timeout),
		catalog.WithLogger(logg),
	)
	if err != nil {
		return routes.Deps{}, fmt.Errorf("catalog client: %w", err)
	}

	cartItems, err := cart.NewCollection(backend.Store, collection.Options[cart.Entry]{
		Locker:  locker,
		Logger:  logg,
		Metrics: collectionMetrics,
	})
	if err != nil {
		return routes.Deps{}, fmt.Errorf("cart collection: %w", err)
	}
	cartSvc, err := cart.NewService(cartItems, sess)
	if err != nil {
		return routes.Deps{}, err
	}

	favItems, err := favorites.NewCollection(backend.Store, collection.Options[favorites.Entry]{
		Locker:  locker,
		Logger:  logg,
		Metrics: collectionMetrics,
	})
	if err != nil {
		return routes.Deps{}, fmt.Errorf("favorites collection: %w", err)
	}
	favSvc, err := favorites.NewService(favItems, sess)
	if err != nil {
		return routes.Deps{}, err
	}

	accountSvc, err := account.NewService(account.ServiceParams{API: api, Session: sess, Logger: logg})
	if err != nil {
		return routes.Deps{}, err
	}

	checkoutSvc, err := checkout.NewService(checkout.ServiceParams{
		Cart:     cartSvc,
		Session:  sess,
		API:      api,
		Shipping: checkout.NewShippingTable(cfg.Checkout),
		Logger:   logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	ordersSvc, err := orders.NewService(api, sess)
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Config:    cfg,
		Logger:    logg,
		Store:     backend.Pinger,
		Metrics:   reg,
		Screens:   focus.NewRegistry(),
		Session:   sess,
		Catalog:   api,
		Cart:      cartSvc,
		Favorites: favSvc,
		Account:   accountSvc,
		Checkout:  checkoutSvc,
		Orders:    ordersSvc,
	}, nil
}
