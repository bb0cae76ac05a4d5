// Package db opens the application's SQLite database and serializes access to it.
//
// The database is reached through exactly one connection. Every statement group
// runs inside [Client.WithConn] or [Client.WithTx], which hold a process-wide lock
// for the duration of the callback. Waiting for the lock honours the caller's
// context; a cancelled wait returns [ErrLock].
//
//	client, err := db.Open(ctx, db.Config{Path: "./sqlite.db"}, db.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	err = client.WithConn(ctx, func(ctx context.Context, conn bun.IDB) error {
//		_, err := conn.NewDelete().Model((*Row)(nil)).Where("id = ?", id).Exec(ctx)
//		return err
//	})
//
// Schema migrations are applied with [Migrate] from an embedded goose directory.
package db
