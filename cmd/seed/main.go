// Wipes the database and loads the demo account plus two recipes. Local
// development only, never ship this anywhere near prod.
package main

import (
	"os"
	"time"

	"github.com/prabhdip/recipebox/internal/config"
	"github.com/prabhdip/recipebox/internal/db"
	"github.com/prabhdip/recipebox/internal/observability"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connection failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	ctx, cancel := config.WithTimeout(30 * time.Second)
	defer cancel()

	err = db.EnsureSchema(ctx, pool)

	if err != nil {
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}

	err = db.Reset(ctx, pool)

	if err != nil {
		log.Error("reset failed", "err", err)
		os.Exit(1)
	}

	err = db.SeedDemo(ctx, pool)

	if err != nil {
		log.Error("seed failed", "err", err)
		os.Exit(1)
	}

	log.Info("database populated")
}
