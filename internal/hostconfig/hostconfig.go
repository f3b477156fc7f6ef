// Package hostconfig loads the optional alu.toml host policy file using
// github.com/BurntSushi/toml, following the manifest/manifest.go pattern
// from the teacher repo (maggie.toml project configuration). Nothing in
// here changes opcode semantics (spec §4 is unconditional); these are
// strictly embedder-level controls layered on top.
package hostconfig

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the decoded [alu] table of alu.toml.
type Config struct {
	Alu struct {
		Verbose        bool     `toml:"verbose"`
		RNGSeed        int64    `toml:"rng_seed"`
		MaxStackDepth  int      `toml:"max_stack_depth"`
		Builtins       []string `toml:"builtins"`
		CachePrograms  bool     `toml:"cache_programs"`
	} `toml:"alu"`
}

// Default returns the zero-value policy: verbose off, no stack cap, every
// registered built-in callable, no program cache.
func Default() Config {
	return Config{}
}

// Load decodes path. A missing file is not an error — it yields Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// BuiltinAllowed reports whether name may be registered, given the
// configured allowlist. An empty allowlist means "everything registered
// by the core is allowed" (spec's default built-in table is unrestricted).
func (c Config) BuiltinAllowed(name string) bool {
	if len(c.Alu.Builtins) == 0 {
		return true
	}
	for _, n := range c.Alu.Builtins {
		if n == name {
			return true
		}
	}
	return false
}
