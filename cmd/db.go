package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/satark-labs/scamintel/internal/intel"
	"github.com/satark-labs/scamintel/internal/source"
	"github.com/satark-labs/scamintel/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "file":
		st = store.NewFile(cfg.Store.Path)
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "scamintel.db"
		}
		st, err = store.NewSQLite(dsn)
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}

func newFetchers() []source.Fetcher {
	ua := cfg.Source.UserAgent
	return []source.Fetcher{
		source.NewNews(cfg.Source.News, ua),
		source.NewComplaints(cfg.Source.Complaints, ua),
		source.NewAdvisory(cfg.Source.Advisory, ua),
		source.NewSocial(cfg.Source.Social, ua),
	}
}

// openDB builds the database handle from config. The returned cleanup
// performs the final flush.
func openDB(ctx context.Context) (*intel.Database, func(), error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	db := intel.Open(ctx, st, newFetchers(), cfg.Cache)
	cleanup := func() {
		_ = db.Close(context.Background())
	}
	return db, cleanup, nil
}
