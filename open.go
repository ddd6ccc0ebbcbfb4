package thunderdoc

import (
	"time"

	"github.com/longlodw/thunderdoc/config"
	"github.com/longlodw/thunderdoc/store"
)

// OpenModel opens the bolt file named by cfg and returns a model over the
// collection for schema. Daily models resolve their collection from now.
// Closing the returned DB releases the file.
func OpenModel(cfg *config.Config, schema Schema, now time.Time, opts ...Option) (*Model, *store.DB, error) {
	db, err := store.Open(cfg.Store.Path, 0600, &store.Options{
		NoSync:  cfg.Store.NoSync,
		Timeout: cfg.Store.Timeout,
	})
	if err != nil {
		return nil, nil, err
	}
	col, err := db.Collection(cfg.CollectionName(DBName(schema.Name, cfg.Model.Daily, now)))
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	defaults := []Option{
		WithDevMode(cfg.Model.DevMode),
		WithIndexCacheSize(cfg.Engine.IndexCacheSize),
		WithDefaultRows(cfg.Engine.DefaultRows),
	}
	m, err := NewModel(col, schema, append(defaults, opts...)...)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return m, db, nil
}
