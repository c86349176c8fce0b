// Package mongo implements connection.Transport for MongoDB.
//
// Open builds a client from Config and the shared connection.Options, dials
// once and pings the primary. Driver heartbeats are observed through an
// event.ServerMonitor: when the last healthy server stops answering the
// transport emits disconnected, and the first successful heartbeat after
// that emits reconnected. Close disconnects the client and emits close.
//
//	tr, err := mongo.New(mongo.Config{ConnectionURL: "mongodb://localhost:27017"})
//	if err != nil {
//		return err
//	}
//	m, err := connection.New[*driver.Client](tr, connection.DefaultOptions())
//	client, err := m.Connect(ctx)
//
// Healthcheck wraps a client ping for readiness endpoints.
package mongo
