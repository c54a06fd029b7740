package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/matth2611/Holy-navigator/internal/analysis"
	"github.com/matth2611/Holy-navigator/internal/apperr"
	"github.com/matth2611/Holy-navigator/internal/auth"
	"github.com/matth2611/Holy-navigator/internal/bible"
	"github.com/matth2611/Holy-navigator/internal/bookmarks"
	"github.com/matth2611/Holy-navigator/internal/config"
	"github.com/matth2611/Holy-navigator/internal/db"
	"github.com/matth2611/Holy-navigator/internal/devotional"
	"github.com/matth2611/Holy-navigator/internal/dictionary"
	"github.com/matth2611/Holy-navigator/internal/forum"
	"github.com/matth2611/Holy-navigator/internal/journal"
	"github.com/matth2611/Holy-navigator/internal/logger"
	"github.com/matth2611/Holy-navigator/internal/media"
	"github.com/matth2611/Holy-navigator/internal/metrics"
	"github.com/matth2611/Holy-navigator/internal/middleware"
	"github.com/matth2611/Holy-navigator/internal/profile"
	"github.com/matth2611/Holy-navigator/internal/push"
	"github.com/matth2611/Holy-navigator/internal/readingplan"
	"github.com/matth2611/Holy-navigator/internal/security"
	"github.com/matth2611/Holy-navigator/internal/storage"
	"github.com/matth2611/Holy-navigator/internal/subscription"
	"github.com/matth2611/Holy-navigator/internal/token"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

const apiVersion = "1.0.0"

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	log := logger.SetupDefault(os.Stdout, cfg.LogLevel)

	d, err := db.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("database", slog.Any("error", err))
		os.Exit(1)
	}

	for _, m := range []struct {
		name string
		init func(*gorm.DB) error
	}{
		{"auth", auth.Init},
		{"bookmarks", bookmarks.Init},
		{"journal", journal.Init},
		{"forum", forum.Init},
		{"readingplan", readingplan.Init},
		{"subscription", subscription.Init},
		{"profile", profile.Init},
		{"media", media.Init},
		{"analysis", analysis.Init},
		{"push", push.Init},
	} {
		if err := m.init(d); err != nil {
			log.Error("migrate", slog.String("package", m.name), slog.Any("error", err))
			os.Exit(1)
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	router, cleanup, err := newRouter(cfg, d, log, collector, reg)
	if err != nil {
		log.Error("build router", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	server := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("shutdown", slog.Any("error", err))
	}
}

// newRouter builds every feature handler and mounts the API twice: at the
// root and under /api, matching both frontend base URLs.
func newRouter(cfg *config.Config, d *gorm.DB, log *slog.Logger, collector *metrics.Collector, gatherer prometheus.Gatherer) (http.Handler, func(), error) {
	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	sanitizer := security.NewSanitizer()
	markdown := security.NewMarkdownRenderer(sanitizer)

	codec := token.NewCodec(cfg.JWTSecret)
	authStore := auth.NewGormStore(d)
	resolver := middleware.NewResolver(codec, auth.PrincipalFinder{Store: authStore})

	catalog := bible.NewCatalog()
	samples, err := bible.LoadSamples()
	if err != nil {
		return nil, nil, err
	}
	year, err := devotional.Load()
	if err != nil {
		return nil, nil, err
	}
	dict, err := dictionary.Load()
	if err != nil {
		return nil, nil, err
	}
	mediaCatalog, err := media.Load()
	if err != nil {
		return nil, nil, err
	}

	provider := bible.NewHTTPProvider(cfg.BibleAPIURL, cfg.BibleTranslation, httpClient)
	bibleSvc := bible.NewService(catalog, provider, samples, collector, log)
	index := bible.NewSearchIndex(append(samples.Passages(), year.Passages(catalog)...))

	bookmarkStore := bookmarks.NewGormStore(d)
	journalStore := journal.NewGormStore(d)
	forumStore := forum.NewGormStore(d)

	var presigner profile.Presigner
	if cfg.StorageEnabled() {
		p, err := storage.New(context.Background(), storage.Options{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, nil, err
		}
		presigner = p
	} else {
		log.Warn("S3 storage not configured, profile picture uploads disabled")
	}

	authH := auth.NewHandler(authStore, codec, auth.NewHTTPIdentityClient(cfg.IdentitySessionURL, httpClient), cfg.CookieSecure, log)
	bibleH := bible.NewHandler(catalog, bibleSvc, index)
	dictH := dictionary.NewHandler(dict)
	devotionalH := devotional.NewHandler(year, time.Now)
	bookmarksH := bookmarks.NewHandler(bookmarkStore, catalog, sanitizer)
	journalH := journal.NewHandler(journalStore, sanitizer)
	forumH := forum.NewHandler(forumStore, sanitizer, markdown, collector)
	planH := readingplan.NewHandler(readingplan.NewPlan(catalog), readingplan.NewGormStore(d), time.Now)
	subscriptionH := subscription.NewHandler(
		subscription.NewGormStore(d),
		subscription.NewStripeClient(cfg.StripeAPIURL, cfg.StripeAPIKey, httpClient, log),
		cfg.SubscriptionPriceCents,
		cfg.StripeWebhookSecret,
		collector,
		log,
	)
	profileH := profile.NewHandler(profile.Deps{
		Store:     profile.NewGormStore(d),
		Accounts:  authStore,
		Bookmarks: bookmarkStore,
		Journals:  journalStore,
		Posts:     forumStore,
		Catalog:   catalog,
		Sanitizer: sanitizer,
		Presigner: presigner,
	})
	mediaH := media.NewHandler(mediaCatalog, media.NewGormStore(d))
	analysisH := analysis.NewHandler(analysis.Deps{
		Store: analysis.NewGormStore(d),
		// Completions routinely outlast the default outbound timeout.
		LLM: analysis.NewOpenAIClient(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMModel, &http.Client{Timeout: 60 * time.Second}),
		Feeds: &analysis.FeedReader{
			Trusted:   httpClient,
			Untrusted: security.NewSafeClient(cfg.HTTPClientTimeout),
			Sanitizer: sanitizer,
		},
		Sanitizer:   sanitizer,
		Metrics:     collector,
		DefaultFeed: cfg.NewsFeedURL,
		Log:         log,
	})
	pushH := push.NewHandler(push.NewGormStore(d), cfg.VAPIDPublicKey)

	general := middleware.NewRateLimiter(middleware.PerMinute("general", cfg.RateLimitPerMinute))
	analysisLimiter := middleware.NewRateLimiter(middleware.PerHour("analysis", cfg.AnalysisRatePerHour))
	cleanup := func() {
		general.Stop()
		analysisLimiter.Stop()
	}

	r := chi.NewRouter()
	r.Use(middleware.NewRecoveryMiddleware(log))
	r.Use(middleware.NewLoggingMiddleware(log))
	r.Use(middleware.NewMetricsMiddleware(collector))
	r.Use(middleware.NewCORSMiddleware(cfg.CORSOrigins))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		apperr.Write(w, r, apperr.NotFound("Not found"))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx, d); err != nil {
			log.Error("health check", slog.Any("error", err))
			utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "database": "unreachable"})
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "database": "connected"})
	})
	r.Handle("/metrics", metrics.Handler(gatherer))

	mountAPI := func(r chi.Router) {
		r.Use(general.Middleware)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Holy Navigator API", "version": apiVersion})
		})

		r.Mount("/auth", authH.SetupRoutes(resolver))
		r.Mount("/bible", bibleH.SetupRoutes(dictH))
		r.Mount("/dictionary", dictH.SetupRoutes())
		r.Mount("/devotional", devotionalH.SetupRoutes())
		r.Mount("/bookmarks", bookmarksH.SetupRoutes(resolver))
		r.Mount("/journal", journalH.SetupRoutes(resolver))
		r.Mount("/forum", forumH.SetupRoutes(resolver))
		r.Mount("/reading-plan", planH.SetupRoutes(resolver))
		r.Mount("/subscription", subscriptionH.SetupRoutes(resolver))
		r.Mount("/webhook", subscriptionH.WebhookRoutes())
		r.Mount("/profile", profileH.SetupRoutes(resolver))
		r.Mount("/notifications", profileH.NotificationRoutes(resolver))
		r.Mount("/media", mediaH.SetupRoutes(resolver))
		r.Mount("/analyze", analysisH.SetupRoutes(resolver, analysisLimiter.Middleware))
		r.Mount("/push", pushH.SetupRoutes(resolver))
	}

	r.Route("/api", mountAPI)
	r.Group(mountAPI)

	return r, cleanup, nil
}
