package main

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"stayfinder/internal/adapters/observability"
	"stayfinder/internal/app"
	"stayfinder/internal/domain"
	"stayfinder/internal/shared"
	mysqlrepo "stayfinder/internal/storage/mysql"
)

// seedCities are the locations pre-warmed into the hotel store so ranked
// identifiers stay resolvable even when a later search returns a partial
// candidate set.
var seedCities = []string{
	"Paris", "Rome", "London", "Barcelona", "Amsterdam",
	"Berlin", "Vienna", "Prague", "Madrid", "Milan",
}

const seedWorkers = 8

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)
	log.Info().Int("cities", len(seedCities)).Int("workers", seedWorkers).Msg("seeder starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	store := mysqlrepo.New(db)
	provider := app.NewProvider(nil) // synthetic catalog only

	sem := semaphore.NewWeighted(int64(seedWorkers))
	var wg sync.WaitGroup

	for _, city := range seedCities {
		city := city

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(location string) {
			defer wg.Done()
			defer sem.Release(1)

			params := domain.SearchParams{Location: &location, Adults: 1, Rooms: 1, Preferences: []string{}}
			hotels := provider.Search(ctx, params)

			saved := 0
			for _, h := range hotels {
				if h.HotelID == "" {
					continue
				}
				rec := domain.HotelRecord{HotelID: h.HotelID, Payload: h.RawJSON}
				if err := store.UpsertHotel(ctx, rec); err != nil {
					log.Warn().Err(err).Str("hotel_id", h.HotelID).Msg("seed upsert failed")
					continue
				}
				saved++
			}
			log.Info().Str("city", location).Int("saved", saved).Msg("city seeded")
		}(city)
	}

	wg.Wait()
	log.Info().Msg("seeding completed")
}
