package protocol

// Denial codes issued by the server. The set is open: unknown codes pass
// through to callers verbatim.
const (
	DenyAlreadyOwned        = "already_owned"
	DenyInsufficientBalance = "insufficient_balance"
	DenyOutOfBounds         = "out_of_bounds"
	DenyRateLimit           = "rate_limit"
)

// Client-side failure codes, never sent on the wire.
const (
	FailTimeout        = "timeout"
	FailConnectionLost = "connection_lost"
)

var knownCodes = map[string]struct{}{
	DenyAlreadyOwned:        {},
	DenyInsufficientBalance: {},
	DenyOutOfBounds:         {},
	DenyRateLimit:           {},
	FailTimeout:             {},
	FailConnectionLost:      {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
