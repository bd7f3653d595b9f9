package service

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"studentblog/app/config"
	"studentblog/app/controllers"
	"studentblog/app/middleware"
	"studentblog/app/repositories"
	"studentblog/app/routes"
	"studentblog/app/services"
	"studentblog/app/uploads"
	"studentblog/app/validation"
)

const shutdownTimeout = 10 * time.Second

// App is the assembled HTTP handler plus the resources it keeps open.
type App struct {
	Config  *config.Config
	Handler http.Handler
	closers []func(context.Context) error
}

// NewApp opens the configured store and wires the router on top of it.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	var (
		postRepo    repositories.PostRepository
		commentRepo repositories.CommentRepository
		resolver    validation.PostResolver
	)
	switch cfg.Store {
	case config.StoreMongo:
		store, err := repositories.NewMongoStore(ctx, repositories.MongoConfig{URI: cfg.MongoURI, DBName: cfg.MongoDB})
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, store.Close)
		postRepo, commentRepo, resolver = store.Posts, store.Comments, store.Posts
		log.Infof("[server] using mongo database %q", cfg.MongoDB)
	default:
		repo, err := repositories.NewRepository(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func(context.Context) error { return repo.Close() })
		postRepo, commentRepo, resolver = repo.Posts, repo.Comments, repo.Posts
		log.Infof("[server] using badger database at %q", cfg.BadgerPath)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow.Duration)
	limiter.TrustProxy = cfg.TrustProxy
	app.closers = append(app.closers, func(context.Context) error {
		limiter.Stop()
		return nil
	})

	opts := routes.Options{
		BasePath:    cfg.BasePath,
		ImagesPath:  cfg.ImagesPath,
		Posts:       controllers.NewPostController(services.NewPostService(postRepo), uploads.New(cfg.UploadDir, cfg.MaxUploadSize)),
		Comments:    controllers.NewCommentController(services.NewCommentService(commentRepo)),
		Resolver:    resolver,
		RateLimiter: limiter,
		CORS: middleware.CORSOptions{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: middleware.DefaultCORSOptions.AllowedMethods,
			AllowedHeaders: middleware.DefaultCORSOptions.AllowedHeaders,
		},
		ServiceName: cfg.ServiceName,
	}

	if len(cfg.KafkaBrokers) > 0 {
		kw := middleware.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		app.closers = append(app.closers, func(context.Context) error { return kw.Close() })
		opts.AccessLog = kw
		log.Infof("[server] publishing access logs to kafka topic %q", cfg.KafkaTopic)
	}

	app.Handler = routes.New(opts)
	return app, nil
}

// Close releases everything NewApp opened, in reverse order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// loadServeConfig reads the configuration and applies serve flags on top of it.
func loadServeConfig(args []string) (*config.Config, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a TOML config file")
	addr := fs.String("addr", "", "listen address, overrides the config")
	store := fs.String("store", "", "storage backend: badger or mongo")
	logLevel := fs.String("log-level", "", "log level: debug, info, warn, error")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if *addr != "" {
		cfg.HTTPAddr = *addr
	}
	if *store != "" {
		cfg.Store = *store
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunAppServer serves the blog API until SIGINT or SIGTERM.
func RunAppServer(args []string) int {
	cfg, err := loadServeConfig(args)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		return 1
	}
	cfg.ConfigureLogging()

	app, err := NewApp(context.Background(), cfg)
	if err != nil {
		log.Errorf("[server] failed to initialize storage: %v", err)
		return 1
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("[server] starting on %v%v", cfg.HTTPAddr, cfg.BasePath)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	code := 0
	select {
	case <-sigChan:
	case err := <-errCh:
		log.Errorf("[server] failed to start: %v", err)
		code = 1
	}

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownRelease()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[server] HTTP server shutdown error: %v", err)
	} else {
		log.Info("[server] HTTP server shut down gracefully")
	}

	if err := app.Close(shutdownCtx); err != nil {
		log.Errorf("[server] failed to close storage: %v", err)
		code = 1
	}
	log.Info("[server] storage closed")
	return code
}
