package wallet

import (
	"github.com/abesuite/utxowallet/internal/cfgutil"
	"github.com/jessevdk/go-flags"
)

// Config is the subset of an embedding application's configuration this
// module consumes directly, parsed with go-flags the way the teacher's own
// daemon config parses its options (internal/cfgutil.AmountFlag is the
// teacher's own config-flag helper for ABE amounts).
type Config struct {
	MinRelayFee *cfgutil.AmountFlag `long:"minrelayfee" description:"minimum fee a locally originated transaction must pay before the Active Kernel will accept and (re)broadcast it"`
}

// DefaultConfig returns the Config an embedding application gets without
// parsing any flags: no minimum relay fee enforced.
func DefaultConfig() *Config {
	return &Config{MinRelayFee: cfgutil.NewAmountFlag(0)}
}

// ParseConfig parses args (e.g. os.Args[1:]) into a Config seeded from
// DefaultConfig.
func ParseConfig(args []string) (*Config, error) {
	cfg := DefaultConfig()
	parser := flags.NewParser(cfg, flags.IgnoreUnknown)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyConfig configures k to enforce cfg's minimum relay fee on NewPending.
func (k *ActiveKernel) ApplyConfig(cfg *Config) {
	k.minRelayFee = cfg.MinRelayFee.Amount
}
