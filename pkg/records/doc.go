// Package records keeps a Postgres row for every stored upload.
//
// Register the after_save hook on the shared registry and apply the embedded
// schema once at startup:
//
//	if err := pg.Migrate(ctx, pool, pgCfg, log, records.Migrations); err != nil {
//		return err
//	}
//	store := records.NewStore(pool, records.WithStorage("s3"), records.WithLogger(log))
//	_ = hooks.Register(upload.AfterSave, store.AfterSave())
//
// The hook stores the record ID in the file's metadata under "record_id".
package records
