package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"strings"

	"itinerary-scoring-service/internal/config"
	"itinerary-scoring-service/internal/platform/db"

	"github.com/joho/godotenv"
)

// dbtool applies or rolls back the lookup cache schema.
//
//	dbtool -driver postgres up
//	dbtool -driver sqlite reset
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	driver := flag.String("driver", config.Get("CACHE_BACKEND", config.CachePostgres), "postgres or sqlite")
	flag.Parse()

	cmd := strings.ToLower(flag.Arg(0))
	if cmd == "" {
		cmd = "up"
	}

	ctx := context.Background()

	conn, name, err := open(ctx, *driver)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	switch cmd {
	case "up":
		log.Println("Applying migrations...")
		if err := db.Migrate(ctx, conn, name); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		log.Println("Schema ready.")
	case "reset":
		log.Println("Rolling back all migrations...")
		if err := db.Reset(ctx, conn, name); err != nil {
			log.Fatalf("reset failed: %v", err)
		}
		log.Println("Reset complete.")
	default:
		log.Fatalf("unknown command %q (want up or reset)", cmd)
	}
}

func open(ctx context.Context, driver string) (*sql.DB, string, error) {
	switch driver {
	case config.CacheSQLite:
		conn, err := db.OpenSQLite(ctx, config.Get("SQLITE_PATH", "data/cache.db"))
		return conn, db.DriverSQLite, err
	case config.CachePostgres:
		url := config.Get("DATABASE_URL", "")
		if strings.TrimSpace(url) == "" {
			log.Fatal("DATABASE_URL is required")
		}
		conn, err := db.Open(ctx, url)
		return conn, db.DriverPostgres, err
	default:
		log.Fatalf("unsupported driver %q (want postgres or sqlite)", driver)
		return nil, "", nil
	}
}
