package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/okieraised/points-of-interests/docs"
	"github.com/okieraised/points-of-interests/internal/config"
	"github.com/okieraised/points-of-interests/internal/handler"
	"github.com/okieraised/points-of-interests/internal/logging"
	"github.com/okieraised/points-of-interests/internal/repository"
	"github.com/okieraised/points-of-interests/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	config, err := config.LoadConfig("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	logging.Init("poi-api", config.Environment, config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database connection
	conn, err := pgxpool.New(ctx, config.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close()

	repo := repository.NewRepository(conn)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("cannot migrate db")
	}

	health := map[string]handler.Pinger{"postgres": repo}

	// Completion backends, fastest first
	trie := repository.NewTrieIndex()
	if config.TrieWarmLimit > 0 {
		places, err := repo.ListPlaces(ctx, config.TrieWarmLimit)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot warm completion index")
		}
		trie.Load(places)
		log.Info().Int("places", trie.Len()).Msg("Completion index warmed")
	}
	backends := []service.CompletionBackend{trie}

	switch config.CompletionBackend {
	case "typesense":
		if config.TypesenseURL == "" {
			log.Fatal().Msg("COMPLETION_BACKEND=typesense requires TYPESENSE_URL")
		}
		index := repository.NewTypesenseIndex(config.TypesenseURL, config.TypesenseAPIKey, config.TypesenseCollection)
		if err := index.EnsureCollection(ctx); err != nil {
			log.Fatal().Err(err).Msg("cannot prepare typesense collection")
		}
		backends = append(backends, index)
	default:
		backends = append(backends, repo)
	}

	// Placemark cache is optional
	var cache service.PlacemarkCache
	if config.RedisAddress != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddress,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		defer rdb.Close()
		cache = repository.NewPlacemarkCache(rdb, config.CacheTTL)
		health["redis"] = handler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	placeService := service.NewPlaceService(repo, service.NewPhoneFormatter(config.DefaultRegion), backends...)
	reverseGeocodeService := service.NewReverseGeoCodeService(repo, cache, repository.PlacemarkKey)

	placeHandler := handler.NewPlaceHandler(placeService)
	reverseGeocodeHandler := handler.NewReverseGeocodeHandler(reverseGeocodeService)

	if config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(cors.Default())

	r.GET("/health", handler.Health(health))
	r.GET("/complete", placeHandler.Complete)
	r.GET("/search", placeHandler.Search)
	r.GET("/places/:handle", placeHandler.Place)
	r.GET("/features/:id", placeHandler.Feature)
	r.GET("/reverse-geocode", reverseGeocodeHandler.ReverseGeocode)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              config.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", config.ServerAddress).Str("completion", config.CompletionBackend).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
