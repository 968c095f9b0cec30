package cli

// Flag constants for vaults CLI commands. prev_key / new_prev_key (spec.md
// §4.1) are optional VaultKey references, so they are flags rather than
// positional args: omitting both means "None".
const (
	FlagPrevIndex      = "prev-index"
	FlagPrevAccount    = "prev-account"
	FlagNewPrevIndex   = "new-prev-index"
	FlagNewPrevAccount = "new-prev-account"
)
