// Package engine wires every layer of the embedded database — stores,
// commit protocol, predicate evaluation, query planning, execution, and
// cursor handling — behind a small set of entity-agnostic entry points.
package engine

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/dragginzgame/icydb-go/cursor"
	"github.com/dragginzgame/icydb-go/icyerr"
)

// Config is the engine's top-level tunable surface, loaded from a TOML
// file the same way a deployed canister's build-time settings are.
type Config struct {
	// PlanCacheSize bounds the number of distinct plan fingerprints the
	// access-plan cache retains.
	PlanCacheSize int `toml:"plan_cache_size"`
	// CursorVersion selects which wire shape new continuation tokens are
	// minted with. Existing tokens of either version still decode and
	// validate regardless of this setting.
	CursorVersion cursor.Version `toml:"cursor_version"`
	// MaxRowOpsPerCommit caps how many row mutations a single commit
	// marker may batch.
	MaxRowOpsPerCommit int `toml:"max_row_ops_per_commit"`
}

// DefaultConfig returns the engine's out-of-the-box settings.
func DefaultConfig() Config {
	return Config{
		PlanCacheSize:      256,
		CursorVersion:      cursor.V2,
		MaxRowOpsPerCommit: 10_000,
	}
}

// LoadConfig parses a TOML-encoded configuration, filling in defaults
// for any field the document omits.
func LoadConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, icyerr.Wrap(err, icyerr.Unsupported, icyerr.OriginInterface, "parse engine config")
	}
	return cfg, nil
}
