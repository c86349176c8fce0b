// Package redis implements connection.Transport for Redis using go-redis.
//
// Open parses the connection URL, applies the pool size and connect timeout
// from connection.Options and pings once. go-redis reconnects on its own
// and reports nothing, so a probe.Prober pings every keepAlive interval and
// turns failures and recoveries into disconnected and reconnected signals.
package redis
