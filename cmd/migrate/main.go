// Comando migrate: aplica las migraciones embebidas contra Postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dropDatabas3/assetweb/internal/store"
	migrations "github.com/dropDatabas3/assetweb/migrations/postgres"
)

func main() {
	_ = godotenv.Load()

	var dsn string
	var dryRun bool
	flag.StringVar(&dsn, "dsn", os.Getenv("STORAGE_DSN"), "DSN de Postgres")
	flag.BoolVar(&dryRun, "dry-run", false, "solo listar migraciones, no aplicar")
	flag.Parse()

	if dsn == "" {
		fmt.Fprintln(os.Stderr, "migrate: falta -dsn o STORAGE_DSN")
		os.Exit(2)
	}

	m := store.NewMigrator(migrations.FS, migrations.Dir)

	if dryRun {
		migs, err := m.ParseMigrations()
		if err != nil {
			fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
			os.Exit(1)
		}
		for _, mig := range migs {
			fmt.Printf("%04d_%s\n", mig.Version, mig.Name)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	res, err := m.Run(ctx, pool)
	if err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("applied=%v skipped=%v in %s\n", res.Applied, res.Skipped, res.Duration.Round(time.Millisecond))
}
