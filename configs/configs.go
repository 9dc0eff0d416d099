package configs

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	HKDFInfo            = []byte("e2ee-session")
	HKDFSaltRootKey     = []byte("RootKey")
	HKDFSaltMessageKeys = []byte("MessageKey")

	// MaxReceiverChains bounds the number of receiving chains kept per
	// session state; the oldest chain is evicted past this point.
	MaxReceiverChains = 5

	// MaxArchivedStates bounds the number of superseded session states a
	// record keeps around for late-arriving messages.
	MaxArchivedStates = 40

	// MaxSkippedMessageKeys bounds both the skip distance within a single
	// receiving chain and the number of cached out-of-order message keys.
	MaxSkippedMessageKeys = 1000

	// SessionTTL is how long a sender chain stays usable after session
	// establishment before the caller should force a re-handshake.
	SessionTTL = 30 * 24 * time.Hour

	RedisAddress  = "localhost:6379"
	SessionKeyFmt = "session:%s:%d"
)

// Load pulls overrides from a .env file (if present) and the environment.
func Load() {
	_ = godotenv.Load()

	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			SessionTTL = d
		}
	}
	if v := os.Getenv("MAX_ARCHIVED_STATES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			MaxArchivedStates = n
		}
	}
	if v := os.Getenv("MAX_RECEIVER_CHAINS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			MaxReceiverChains = n
		}
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		RedisAddress = v
	}
}
