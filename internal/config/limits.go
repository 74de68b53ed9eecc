package config

import "time"

const (
	// MaxImportBatchSize caps how many symbols go into one FMP profile request.
	// The free tier rejects long symbol lists, so keep batches small.
	MaxImportBatchSize = 100

	// DefaultImportBatchSize is used when an import config leaves batch size unset.
	DefaultImportBatchSize = 5

	// DefaultImportRequestDelay is the pause between profile batches (milliseconds).
	DefaultImportRequestDelay = 2000

	// FMPRetryBase is the first backoff interval after a 403 outside an import
	// run. Imports use their own request delay.
	FMPRetryBase = DefaultImportRequestDelay * time.Millisecond

	// MaxImportRequestDelay bounds the per-batch delay (milliseconds).
	MaxImportRequestDelay = 60_000

	// DefaultUpdateIntervalDays is how long an imported company is considered fresh.
	DefaultUpdateIntervalDays = 7

	// CompanyCacheTTL is how long the companies endpoint serves database rows
	// before going back to FMP.
	CompanyCacheTTL = 24 * time.Hour

	// CompanyProfileLimit is the number of screener hits the companies endpoint
	// expands into full profiles.
	CompanyProfileLimit = 25

	// PreferenceCookieMaxAge is the lifetime of the use_local_database and ff_* cookies.
	PreferenceCookieMaxAge = 30 * 24 * time.Hour

	// MaxSlugLength matches the VARCHAR(255) slug columns.
	MaxSlugLength = 255
)
