// Package config parses cmd/lodis-server's command-line flags with
// github.com/spf13/pflag, in the flag.NewFlagSet style the pack's
// calvinalkan-agent-task CLI uses for its subcommands.
package config

import (
	"fmt"

	flag "github.com/spf13/pflag"
)

// Config holds everything cmd/lodis-server needs to start.
type Config struct {
	ListenAddr      string
	DataDir         string
	InMemory        bool
	Dev             bool
	MaxConcurrent   int
	MaxBodyBytes    int64
	RegistryGCQuiet bool
}

// Parse parses args (typically os.Args[1:]) into a Config.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("lodis-server", flag.ContinueOnError)

	cfg := &Config{}
	fs.StringVar(&cfg.ListenAddr, "listen", ":6973", "HTTP listen address")
	fs.StringVar(&cfg.DataDir, "data-dir", "./data", "badger data directory")
	fs.BoolVar(&cfg.InMemory, "in-memory", false, "open the store with no on-disk footprint (testing only)")
	fs.BoolVar(&cfg.Dev, "dev", false, "enable development-mode CORS instead of production security headers")
	fs.IntVar(&cfg.MaxConcurrent, "max-concurrent", 256, "maximum concurrent in-flight requests")
	fs.Int64Var(&cfg.MaxBodyBytes, "max-body-bytes", 16*1024*1024, "maximum request body size in bytes")
	fs.BoolVar(&cfg.RegistryGCQuiet, "quiet", false, "has no effect: lodis-server performs no collection GC")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
