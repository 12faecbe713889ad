package dexparser

import "github.com/gagliardetto/solana-go"

// ParseConfig controls a single parse run. The zero value disables the
// unknown-DEX heuristic and returns failures as state=false envelopes.
type ParseConfig struct {
	// TryUnknownDex runs the balance-delta heuristic on instructions whose
	// program has no registered decoder.
	TryUnknownDex bool `json:"tryUnknownDex"`

	// ThrowError returns view-building failures as errors instead of a
	// state=false result. Per-instruction decode failures are always
	// absorbed.
	ThrowError bool `json:"throwError"`

	// AggregateTrades emits a route-level aggregate trade when the
	// transaction contains at least one trade.
	AggregateTrades bool `json:"aggregateTrades"`

	// Programs, when non-empty, restricts decoding to these program IDs.
	Programs []string `json:"programs,omitempty"`

	// IgnorePrograms skips these program IDs even when registered.
	IgnorePrograms []string `json:"ignorePrograms,omitempty"`
}

func DefaultConfig() *ParseConfig {
	return &ParseConfig{
		TryUnknownDex:   false,
		ThrowError:      false,
		AggregateTrades: true,
	}
}

func (c *ParseConfig) programAllowed(pk solana.PublicKey) bool {
	s := pk.String()
	for _, ignored := range c.IgnorePrograms {
		if ignored == s {
			return false
		}
	}
	if len(c.Programs) == 0 {
		return true
	}
	for _, allowed := range c.Programs {
		if allowed == s {
			return true
		}
	}
	return false
}
