// Package config contains compile-time defaults for the bank manager.
// Every value here can be overridden by flag, BANKMGR_* environment
// variable or config file.
package config

// =============================================================================
// ACCOUNT STORE DEFAULTS
// =============================================================================

const (
	// MaxAccounts is the number of accounts the store accepts before signup is rejected
	MaxAccounts = 100

	// AccountIDMin is the smallest account number handed out
	AccountIDMin = 1000

	// AccountIDMax is the largest account number handed out
	AccountIDMax = 9999

	// IDDrawAttempts is how many random draws are tried before probing for a free ID
	IDDrawAttempts = 32
)

// =============================================================================
// LOGGING DEFAULTS
// =============================================================================

const (
	// LogLevel applies when logging is enabled (debug, info, warn, error)
	LogLevel = "info"
)

// EnvPrefix is the prefix for environment overrides, e.g. BANKMGR_BANK_MAX_ACCOUNTS.
const EnvPrefix = "BANKMGR"
