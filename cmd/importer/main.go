package main

import (
	"context"
	"flag"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okieraised/points-of-interests/internal/config"
	"github.com/okieraised/points-of-interests/internal/logging"
	"github.com/okieraised/points-of-interests/internal/repository"
	"github.com/rs/zerolog/log"
)

func main() {
	file := flag.String("file", "", "Path to the places CSV file to import")
	index := flag.Bool("typesense", false, "Also index the imported places in Typesense")
	flag.Parse()

	if *file == "" {
		log.Fatal().Msg("--file flag is required")
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	logging.Init("poi-importer", cfg.Environment, cfg.LogLevel)

	log.Info().Str("file", *file).Msg("Starting import")

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open file")
	}
	defer f.Close()

	places, err := parsePlaces(f)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot parse CSV")
	}
	log.Info().Int("records", len(places)).Msg("Parsed records")

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer pool.Close()

	repo := repository.NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal().Err(err).Msg("cannot migrate db")
	}

	before, err := repo.CountPlaces(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot count places")
	}

	n, err := repo.InsertPlaces(ctx, places)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot insert places")
	}

	after, err := repo.CountPlaces(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot count places")
	}
	if after-before != n {
		log.Fatal().Int64("copied", n).Int64("added", after-before).Msg("record count mismatch")
	}
	log.Info().Int64("records", n).Int64("total", after).Msg("Imported places")

	if !*index {
		return
	}
	if cfg.TypesenseURL == "" {
		log.Fatal().Msg("--typesense requires TYPESENSE_URL")
	}

	ts := repository.NewTypesenseIndex(cfg.TypesenseURL, cfg.TypesenseAPIKey, cfg.TypesenseCollection)
	if err := ts.EnsureCollection(ctx); err != nil {
		log.Fatal().Err(err).Msg("cannot prepare typesense collection")
	}

	// Reindex from the table so documents carry database IDs.
	stored, err := repo.ListPlaces(ctx, int(after))
	if err != nil {
		log.Fatal().Err(err).Msg("cannot list places")
	}
	if err := ts.Index(ctx, stored); err != nil {
		log.Fatal().Err(err).Msg("cannot index places")
	}
	log.Info().Int("documents", len(stored)).Str("collection", cfg.TypesenseCollection).Msg("Indexed places")
}
