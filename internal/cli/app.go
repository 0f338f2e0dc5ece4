// Package cli implements the duplines command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/leeovery/duplines/internal/config"
	"github.com/leeovery/duplines/internal/dedup"
	"github.com/leeovery/duplines/internal/engine"
)

// Version is the duplines release version, set at build time with -ldflags.
var Version = "dev"

// App is the duplines CLI application.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	// Cwd is where duplines.toml discovery starts.
	Cwd string
}

// globalFlags holds every parsed flag. Pointer fields distinguish "not given"
// from the zero value so config values survive.
type globalFlags struct {
	quiet    bool
	verbose  bool
	toon     bool
	pretty   bool
	json     bool
	help     bool
	version  bool
	trim     *bool
	strategy string
	history  string
	config   string
	limit    int
}

// Run parses args and dispatches. args[0] is the program name. Returns the
// process exit code.
func (a *App) Run(args []string) int {
	if len(args) == 0 {
		args = []string{"duplines"}
	}
	flags, positional, err := parseArgs(args[1:])
	if err != nil {
		fmt.Fprintf(a.Stderr, "Error: %s\n", err)
		return 1
	}

	if flags.version || (len(positional) == 1 && positional[0] == "version") {
		fmt.Fprintf(a.Stdout, "duplines version %s\n", Version)
		return 0
	}
	if flags.help || (len(positional) == 1 && positional[0] == "help") {
		printUsage(a.Stdout)
		return 0
	}

	cfg, err := a.loadConfig(flags)
	if err != nil {
		fmt.Fprintf(a.Stderr, "Error: %s\n", err)
		return 1
	}

	fc, err := newFormatConfig(flags, cfg, a.Stdout, a.Stderr)
	if err != nil {
		fmt.Fprintf(a.Stderr, "Error: %s\n", err)
		return 1
	}

	switch {
	case len(positional) == 1 && positional[0] == "history":
		err = a.runHistory(fc, flags, cfg)
	case len(positional) == 2:
		err = a.runDedup(fc, flags, cfg, positional[0], positional[1])
	default:
		err = &engine.Error{Kind: engine.KindUsage}
	}

	if err != nil {
		fmt.Fprintf(a.Stderr, "Error: %s\n", err)
		if engine.KindOf(err) == engine.KindUsage {
			fmt.Fprintln(a.Stderr, "Run 'duplines help' for usage.")
		}
		return 1
	}
	return 0
}

// parseArgs separates flags from positional arguments. Flags may appear
// anywhere; "--" ends flag parsing.
func parseArgs(args []string) (globalFlags, []string, error) {
	var (
		flags      globalFlags
		positional []string
	)

	for i := 0; i < len(args); i++ {
		arg := args[i]

		name, value, hasValue := strings.Cut(arg, "=")
		needValue := func() (string, error) {
			if hasValue {
				return value, nil
			}
			if i+1 >= len(args) {
				return "", fmt.Errorf("flag %s requires a value", name)
			}
			i++
			return args[i], nil
		}

		switch name {
		case "--":
			positional = append(positional, args[i+1:]...)
			return flags, positional, nil
		case "--quiet", "-q":
			flags.quiet = true
		case "--verbose", "-v":
			flags.verbose = true
		case "--toon":
			flags.toon = true
		case "--pretty":
			flags.pretty = true
		case "--json":
			flags.json = true
		case "--help", "-h":
			flags.help = true
		case "--version":
			flags.version = true
		case "--trim":
			on := true
			flags.trim = &on
		case "--no-trim":
			off := false
			flags.trim = &off
		case "--strategy":
			v, err := needValue()
			if err != nil {
				return flags, nil, err
			}
			flags.strategy = v
		case "--history":
			v, err := needValue()
			if err != nil {
				return flags, nil, err
			}
			flags.history = v
		case "--config":
			v, err := needValue()
			if err != nil {
				return flags, nil, err
			}
			flags.config = v
		case "--limit":
			v, err := needValue()
			if err != nil {
				return flags, nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return flags, nil, fmt.Errorf("invalid --limit %q: must be a non-negative integer", v)
			}
			flags.limit = n
		default:
			if strings.HasPrefix(arg, "-") && len(arg) > 1 {
				return flags, nil, fmt.Errorf("unknown flag %s", arg)
			}
			positional = append(positional, arg)
		}
	}

	return flags, positional, nil
}

func (a *App) loadConfig(flags globalFlags) (config.Config, error) {
	if flags.config != "" {
		return config.Load(flags.config)
	}
	return config.Discover(a.Cwd)
}

func (a *App) runDedup(fc FormatConfig, flags globalFlags, cfg config.Config, input, output string) error {
	strategyName := cfg.Dedup.Strategy
	if flags.strategy != "" {
		strategyName = flags.strategy
	}
	strategy, err := dedup.ParseStrategy(strategyName)
	if err != nil {
		return err
	}

	trim := cfg.Dedup.Trim
	if flags.trim != nil {
		trim = *flags.trim
	}

	lockTimeout, err := cfg.LockTimeout()
	if err != nil {
		return err
	}

	fc.Logger.Logf("executable: duplines %s", Version)
	if cfg.Path != "" {
		fc.Logger.Logf("config: %s", cfg.Path)
	}

	report, err := engine.Run(context.Background(), engine.Options{
		Input:         input,
		Output:        output,
		Strategy:      strategy,
		Trim:          trim,
		MaxInputBytes: cfg.Input.MaxBytes,
		LockTimeout:   lockTimeout,
		Logger:        fc.Logger,
	})
	if err != nil {
		return err
	}

	data := newReportData(report)
	if path := historyPath(flags, cfg); path != "" {
		data.HistoryID = a.recordRun(fc, path, report)
	}

	if report.WriteErr != nil {
		fmt.Fprintf(a.Stderr, "Error: %s\nAbort!\n", report.WriteErr)
	}

	if fc.Quiet {
		return nil
	}
	return fc.Formatter().FormatReport(a.Stdout, data)
}

func historyPath(flags globalFlags, cfg config.Config) string {
	if flags.history != "" {
		return flags.history
	}
	return cfg.HistoryPath()
}
