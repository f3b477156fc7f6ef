// Command alu runs a compiled Alu bytecode program.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/alu-lang/alu/internal/hostconfig"
	"github.com/alu-lang/alu/internal/progcache"
	"github.com/alu-lang/alu/pkg/alu"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose trace output")
	configPath := flag.String("config", "./alu.toml", "Host config file")
	cachePath := flag.String("cache", "", "Program cache database path (overrides cache_programs's default location)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: alu [options] <path>\n\n")
		fmt.Fprintf(os.Stderr, "Decodes and runs a compiled Alu bytecode file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  alu program.alu       # Run program.alu\n")
		fmt.Fprintf(os.Stderr, "  alu -v program.alu    # Run with verbose tracing\n")
	}
	flag.Parse()

	paths := flag.Args()
	if len(paths) != 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(paths[0], *configPath, *cachePath, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "alu: %v\n", err)
		os.Exit(1)
	}
}

func run(path, configPath, cachePath string, verbose bool) error {
	cfg, err := hostconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	opts := []alu.Option{alu.WithConfig(cfg)}
	if verbose {
		opts = append(opts, alu.WithVerbose(true))
	}

	if cfg.Alu.CachePrograms {
		dbPath := cachePath
		if dbPath == "" {
			dbPath = "alu-cache.sqlite"
		}
		cache, err := progcache.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening program cache: %w", err)
		}
		defer cache.Close()
		opts = append(opts, alu.WithProgramCache(cache))
	}

	state, ctx, stop := alu.NewInterruptible(opts...)
	defer stop()
	defer state.Close()

	if err := state.StartFile(path); err != nil {
		return err
	}
	if err := state.Execute(ctx); err != nil {
		return err
	}
	return state.Err()
}
