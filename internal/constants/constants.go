package constants

import "time"

const (
	SourceTimeout      = 30 * time.Second
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	ImportTimeout      = 5 * time.Minute
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultBattleListLimit = 50
	MaxBattleListLimit     = 500
	MaxRequestBodyBytes    = 32 << 20
)

const (
	UploadMaxConnsPerHost = 16
	UploadRateLimit       = 60
	UploadRateReset       = 60
)

const (
	AppName    = "zipcaster"
	AppVersion = "0.1.0"
)
