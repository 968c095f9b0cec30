package cli

// Flag constants for oracle CLI commands
const (
	// Price submission flags
	FlagAsset     = "asset"
	FlagPrice     = "price"
	FlagValidator = "validator"
	FlagFeeder    = "feeder"

	// Delegation flags
	FlagDelegate = "delegate"
)
