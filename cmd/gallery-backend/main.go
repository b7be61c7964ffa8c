package main

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/tonewall/gallery-backend/internal/api"
	"github.com/tonewall/gallery-backend/internal/config"
	"github.com/tonewall/gallery-backend/internal/database"
	"github.com/tonewall/gallery-backend/internal/ingest"
	"github.com/tonewall/gallery-backend/internal/logger"
	"github.com/tonewall/gallery-backend/internal/model"
	"github.com/tonewall/gallery-backend/internal/search"
	"github.com/tonewall/gallery-backend/internal/sitemap"
	"github.com/tonewall/gallery-backend/internal/suggest"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
)

func main() {
	ctx := context.Background()
	cfg := config.New()

	log, err := logger.New(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		panic(err)
	}

	exporter, err := prometheus.New()
	if err != nil {
		log.Fatal(err)
	}
	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	meter := provider.Meter("github.com/tonewall/gallery-backend")

	errors, err := meter.Int64Counter("errors")
	if err != nil {
		log.Fatalf("creating error counter: %v", err)
	}

	pool, err := database.NewPool(ctx, cfg.DBConnectionDSN, log)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()

	store := database.NewStore(pool, log.WithField("client", "store"))

	searcher := search.New(store, errors, log.WithField("component", "search"))
	suggestions := suggest.New(store.Snapshot, errors, log.WithField("component", "suggest"))

	sitemapHandler := sitemap.NewHandler(
		sitemap.NewBuilder(cfg.SiteURL),
		func(ctx context.Context) ([]*model.ContentRecord, error) {
			return store.List(ctx, database.ListOptions{OrderBy: "created_at", Descending: true})
		},
		log.WithField("component", "sitemap"),
	)
	ingestHandler := ingest.NewHandler(store, errors, log.WithField("component", "ingest"))

	handler := api.New(store, searcher, suggestions, sitemapHandler, ingestHandler, log)
	router := handler.Router(api.RouterConfig{
		AdminToken:   cfg.AdminToken,
		WebhookToken: cfg.WebhookToken,
	})

	corsMW := cors.New(
		cors.Options{
			AllowedOrigins:   []string{"https://*", "http://*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
			Debug:            cfg.LogLevel == "debug",
		})

	http.Handle("/", corsMW.Handler(router))
	http.Handle("/metrics", promhttp.Handler())

	log.Printf("gallery backend listening on http://%s:%s/", cfg.BindHost, cfg.Port)
	log.Fatal(http.ListenAndServe(cfg.BindHost+":"+cfg.Port, nil))
}
