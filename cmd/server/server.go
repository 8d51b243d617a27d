package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/auth"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/cache"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/config"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/eventengine"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/features/inventory"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/features/order"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/features/product"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/features/user"
	"github.com/eng-by-sjb/blue-harbor-commerce-backend/internal/middlewares"
	"github.com/go-chi/chi"
	chimiddleware "github.com/go-chi/chi/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

type ServerConfig struct {
	Addr         string
	DB           *sql.DB
	RedisClient  *redis.Client
	TokenManager *auth.TokenService
}

type server struct {
	*ServerConfig

	doneCh        chan struct{}   // used to signal internal go routines to shutdown
	internalSrvWG *sync.WaitGroup // used to wait for all internal go routines within individual routes to finish before shutting down the server.

	eventEngine eventengine.SubscribeRegisterPublisher
	srv         *http.Server
}

func NewServer(serverConfig *ServerConfig) *server {
	srv := &server{
		ServerConfig:  serverConfig,
		doneCh:        make(chan struct{}),
		internalSrvWG: &sync.WaitGroup{},
	}

	return srv
}

func (s *server) Run() {
	router := chi.NewRouter()

	// strip trailing slashes at the end of the url
	// e.g. /products/1/ -> /products/1
	router.Use(chimiddleware.StripSlashes)

	s.prep()

	router.Mount("/api/v1", s.v1Router()) // api version 1 subrouter

	s.srv = &http.Server{
		Addr:    fmt.Sprintf(":%s", s.Addr),
		Handler: router,
	}

	// start server and listen for [os.Signal] signals to graceful shutdown server.
	s.listenAndServe()
}

func (s *server) listenAndServe() {
	shutdownCtx, shutdownCancel := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer shutdownCancel()

	errGrp, shutdownCtx := errgroup.WithContext(shutdownCtx)

	errGrp.Go(
		func() error {
			log.Printf("server started and is listening at port %s...\n", s.Addr)

			if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) && err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}

			return nil
		},
	)

	errGrp.Go(
		func() error {
			<-shutdownCtx.Done() // block and listen shutdown signals
			println()
			log.Println("hold and wait, server is gracefully shutting down...")

			ctx, cancel := context.WithTimeout(
				context.Background(),
				(20 * time.Second),
			)
			defer cancel()

			log.Println("server has stopped receiving new requests")
			log.Println("waiting for all pending requests to finish....")
			if err := s.srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server failed shutdown gracefully: %w", err)
			}

			return nil
		},
	)

	if err := errGrp.Wait(); err != nil {
		log.Fatal(err.Error())
	}
	log.Println("all pending requests completed!")

	log.Println("waiting for all internal pending go routines....")
	close(s.doneCh)
	s.internalSrvWG.Wait()
	log.Println("all internal go routines are done")

	log.Println("closing other resources...")
	if err := s.DB.Close(); err != nil {
		log.Println("server failed to close db for shutdown")
	}
	if err := s.RedisClient.Close(); err != nil {
		log.Println("server failed to close redis client for shutdown")
	}

	log.Println("server has been gracefully shutdown")
	os.Exit(0)
}

// prep prepares server dependencies needed for server to function
func (s *server) prep() {
	s.eventEngine = eventengine.NewEventEngine(
		&eventengine.EventEngineConfig{
			DoneCh:        s.doneCh,
			InternalSrvWG: s.internalSrvWG,
		},
	)
}

func (s *server) v1Router() *chi.Mux {
	r := chi.NewRouter()

	// health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	cacheTTL := time.Duration(config.Env.CacheTTLInSecs) * time.Second
	appCache := cache.NewRedisCache(s.RedisClient)

	//middleware
	middleware := middlewares.NewMiddleware(
		s.TokenManager,
	)

	// user feature
	userStore := user.NewStore(s.DB)
	userService := user.NewService(userStore, s.TokenManager)
	userHandler := user.NewHandler(userService)
	userHandler.RegisterRoutes(r)

	// inventory feature
	inventoryStore := inventory.NewStore(s.DB)
	inventoryService := inventory.NewService(
		inventoryStore,
		s.eventEngine,
	)

	// product feature
	productStore := product.NewStore(s.DB)
	productService := product.NewService(
		productStore,
		appCache,
		cacheTTL,
	)
	productHandler := product.NewHandler(
		productService,
		middleware,
	)
	productHandler.RegisterRoutes(r)

	product.NewHandlerEvents(
		&product.HandlerEventsConfig{
			DoneCh:        s.doneCh,
			InternalSrvWG: s.internalSrvWG,
			EventEngine:   s.eventEngine,
			Service:       productService,
		},
	)

	// order feature
	orderStore := order.NewStore(s.DB)
	orderService := order.NewService(
		orderStore,
		inventoryService,
		productService,
		appCache,
		cacheTTL,
		s.eventEngine,
	)
	orderHandler := order.NewHandler(
		orderService,
		middleware,
	)
	orderHandler.RegisterRoutes(r)

	inventory.NewHandlerEvents(
		&inventory.HandlerEventsConfig{
			DoneCh:        s.doneCh,
			InternalSrvWG: s.internalSrvWG,
			EventEngine:   s.eventEngine,
			Service:       inventoryService,
		},
	)

	return r
}
