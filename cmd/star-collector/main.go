package main

import (
	"github.com/ping13/star-collector/internal/collector"
	"github.com/ping13/star-collector/internal/config"
	"github.com/ping13/star-collector/internal/feed"
	"github.com/ping13/star-collector/internal/handlers"
	"github.com/ping13/star-collector/pkg/clients/mastodon"
	pkgconfig "github.com/ping13/star-collector/pkg/config"
	"github.com/ping13/star-collector/pkg/logging"
	"github.com/ping13/star-collector/pkg/monitoring"
	"github.com/ping13/star-collector/pkg/server"
	"github.com/ping13/star-collector/pkg/version"
)

func main() {
	logger := logging.NewLoggerWithService("star-collector")
	pkgconfig.LoadEnv(logger)

	port := pkgconfig.GetEnv("PORT", "18090")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(err.Error())
	}

	healthChecker := monitoring.NewHealthChecker("star-collector", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("star-collector", version.Version, version.GitCommit)

	collectorMetrics := &collector.Metrics{
		PagesFetched:   metricsCollector.NewCounter("pages_fetched_total", "Pages fetched per source", []string{"endpoint"}),
		RateLimitStops: metricsCollector.NewCounter("rate_limit_stops_total", "Collections cut short by rate limiting", []string{"endpoint"}),
	}

	client := mastodon.NewClient(cfg.InstanceBaseURL, cfg.AccessToken)
	source := collector.New(client, logger, collector.WithMetrics(collectorMetrics))

	var opts []feed.AssemblerOption
	if len(cfg.ExtraFeedURLs) > 0 {
		opts = append(opts, feed.WithExtraSources(feed.NewExtraSources(cfg.ExtraFeedURLs, cfg.ItemLimit, logger)))
	}
	assembler := feed.NewAssembler(cfg, source, logger, opts...)

	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"MASTODON_ACCESS_TOKEN": cfg.AccessToken,
		"MASTODON_INSTANCE":     cfg.InstanceBaseURL,
		"MASTODON_USERNAME":     cfg.Username,
	}))
	healthChecker.AddCheck("mastodon", monitoring.HTTPServiceHealthCheck("mastodon", cfg.InstanceBaseURL+"/api/v1/instance"))

	feedMetrics := &handlers.FeedMetrics{
		FeedRequests: metricsCollector.NewCounter("feed_requests_total", "Feed requests by outcome", []string{"status"}),
	}

	app := server.SetupServiceRouter(logger, "star-collector", healthChecker, metricsCollector)

	feedHandler := handlers.NewFeedHandler(assembler, cfg.SelfURL, logger, feedMetrics)
	app.GET("/feed", feedHandler.Handle)

	serverConfig := server.DefaultConfig("star-collector", port)
	if err := server.Start(serverConfig, app, logger); err != nil {
		logger.Fatal(err.Error())
	}
}
