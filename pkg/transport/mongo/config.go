package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/dmitrymomot/connkit/pkg/connection"
)

// MinHeartbeatInterval is the smallest heartbeat interval the driver accepts.
const MinHeartbeatInterval = 500 * time.Millisecond

// Config holds the driver settings that connection.Options does not cover.
type Config struct {
	ConnectionURL   string        `env:"MONGODB_URL" yaml:"url"`                                                // ConnectionURL is the URL of the database.
	AppName         string        `env:"MONGODB_APP_NAME" yaml:"appName"`                                       // AppName is reported to the server in the handshake.
	MinPoolSize     uint64        `env:"MONGODB_MIN_POOL_SIZE" envDefault:"1" yaml:"minPoolSize"`               // MinPoolSize is the minimum number of pooled connections.
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"300s" yaml:"maxConnIdleTime"` // MaxConnIdleTime is how long a pooled connection may stay idle.
	RetryWrites     bool          `env:"MONGODB_RETRY_WRITES" envDefault:"true" yaml:"retryWrites"`           // RetryWrites specifies whether to retry write operations.
	RetryReads      bool          `env:"MONGODB_RETRY_READS" envDefault:"true" yaml:"retryReads"`             // RetryReads specifies whether to retry read operations.
}

// ClientOptions merges cfg and opts into driver options. The server monitor
// is attached by the transport.
func ClientOptions(cfg Config, opts connection.Options) *options.ClientOptions {
	co := options.Client().
		ApplyURI(cfg.ConnectionURL).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetRetryWrites(cfg.RetryWrites).
		SetRetryReads(cfg.RetryReads).
		SetReadPreference(ReadPref(opts.ReadPreference))

	if cfg.AppName != "" {
		co.SetAppName(cfg.AppName)
	}
	if d := opts.ConnectTimeout(); d > 0 {
		co.SetConnectTimeout(d)
	}
	if opts.PoolSize > 0 {
		co.SetMaxPoolSize(uint64(opts.PoolSize))
		co.SetMinPoolSize(min(cfg.MinPoolSize, uint64(opts.PoolSize)))
	} else {
		co.SetMinPoolSize(cfg.MinPoolSize)
	}
	if d := opts.KeepAlive(); d > 0 {
		co.SetHeartbeatInterval(max(d, MinHeartbeatInterval))
	}
	return co
}

// ReadPref maps a read preference onto the driver's. Unknown values fall back
// to primary.
func ReadPref(rp connection.ReadPreference) *readpref.ReadPref {
	switch rp {
	case connection.ReadPrimaryPreferred:
		return readpref.PrimaryPreferred()
	case connection.ReadSecondary:
		return readpref.Secondary()
	case connection.ReadSecondaryPreferred:
		return readpref.SecondaryPreferred()
	case connection.ReadNearest:
		return readpref.Nearest()
	default:
		return readpref.Primary()
	}
}
