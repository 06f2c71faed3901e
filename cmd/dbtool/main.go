package main

import (
	"context"
	"database/sql"
	"freight-order-service/internal/adapters/repositories"
	"freight-order-service/internal/config"
	"freight-order-service/internal/platform/db"
	"log"
)

// dbtool prepares the databases without starting the server: the SQLite
// schema and seed accounts, plus the shared Postgres caches when
// DATABASE_URL is set.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	conn, err := db.OpenSqlite(cfg.Database.Path)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := initAndSeed(ctx, conn, cfg.Database.SeedPath); err != nil {
		log.Fatal(err)
	}

	if cfg.Database.CacheURL == "" {
		log.Println("DATABASE_URL not set; skipping shared cache schema")
		return
	}

	pg, err := db.Open(cfg.Database.CacheURL)
	if err != nil {
		log.Fatal(err)
	}
	defer pg.Close()

	log.Println("Initializing cache schema...")
	if err := repositories.InitCacheSchema(ctx, pg); err != nil {
		log.Fatalf("cache schema initialization failed: %v", err)
	}
	log.Println("Cache schema ready.")
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Println("Seeding accounts...")
	if err := repositories.SeedUsers(ctx, conn, []repositories.UserSeed{repositories.DefaultAdmin}); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	if err := repositories.SeedFromJSON(ctx, conn, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")

	return nil
}
