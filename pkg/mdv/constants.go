package mdv

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess          = 0  // Deployment completed successfully
	ExitGeneralError     = 1  // Unknown or unclassified error
	ExitUsageError       = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic            = 3  // Internal panic (unexpected crash)
	ExitConfigError      = 10 // Invalid configuration or deployment request
	ExitCredentialError  = 11 // Failed to acquire a bearer credential
	ExitApprovalDenied   = 12 // User denied cleanup approval
	ExitDeploymentFailed = 13 // Deployment aborted on the critical path
	ExitParseError       = 14 // Diagram could not be parsed
)

const (
	// DefaultForceApprovalCountdown is the countdown duration before forced
	// cleanup approval proceeds.
	DefaultForceApprovalCountdown = 5 * time.Second

	// DefaultRetryInitialDelay is the default initial delay before the
	// first retry attempt.
	DefaultRetryInitialDelay = 500 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry
	// attempts.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of retry
	// attempts after the initial one.
	DefaultRetryMaxAttempts = 4

	// DefaultTokenRefreshSkew is how long before expiry a cached bearer
	// token is considered stale and refreshed.
	DefaultTokenRefreshSkew = 5 * time.Minute

	// DefaultEntityWorkers bounds concurrent entity creations within the
	// create-entities phase.
	DefaultEntityWorkers = 4

	// WebAPIVersion is the Dataverse Web API version all metadata requests
	// are issued against.
	WebAPIVersion = "v9.2"

	// ChoiceValueBase is the starting option value for generated choice
	// sets. Dataverse convention reserves the low integer range for system
	// options.
	ChoiceValueBase = 100_000_000
)
