// Package pg implements connection.Transport for PostgreSQL on a pgx pool.
//
// Open parses the connection string, sizes the pool from connection.Options,
// pings once and, when Config.MigrationsPath is set, applies goose
// migrations before handing the pool out. A probe.Prober pings every
// keepAlive interval and reports drops and recoveries as disconnected and
// reconnected signals. Close stops probing, closes the pool and emits close.
package pg
