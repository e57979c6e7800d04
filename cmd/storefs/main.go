// Command storefs runs filesystem operations against a configured object
// store.
//
// Usage:
//
//	storefs [-config file] [-env file] [-json] [-v] <command> [args]
//
// Paths are scheme-qualified ("store://./a/b") or bare keys ("a/b"), which
// are resolved against the default server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jmgilman/go/fs/storefs"
	"github.com/jmgilman/go/fs/storefs/config"
	"github.com/jmgilman/go/fs/storefs/errors"
	"github.com/lmittmann/tint"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// stringList collects a repeatable flag.
type stringList []string

func (l *stringList) String() string     { return strings.Join(*l, ",") }
func (l *stringList) Set(v string) error { *l = append(*l, v); return nil }

// usageError marks a command line mistake.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.LookupEnv))
}

func setupLogging(w io.Writer, level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
	}))
	slog.SetDefault(logger)
	return logger
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer, lookupEnv func(string) (string, bool)) int {
	flags := flag.NewFlagSet("storefs", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintln(stderr, "usage: storefs [-config file] [-env file] [-json] [-v] <command> [args]")
		fmt.Fprintln(stderr, "\ncommands:")
		for _, c := range commands {
			fmt.Fprintf(stderr, "  %-32s %s\n", c.usage, c.help)
		}
		fmt.Fprintln(stderr, "\nflags:")
		flags.PrintDefaults()
	}

	var envFiles stringList
	configFile := flags.String("config", "", "TOML settings file")
	flags.Var(&envFiles, "env", ".env file to load (repeatable)")
	jsonErrors := flags.Bool("json", false, "print errors as JSON")
	verbose := flags.Bool("v", false, "enable debug logging")

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitUsage
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return exitUsage
	}

	report := func(err error) int {
		var ue usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(stderr, "storefs: %v\n", err)
			return exitUsage
		}
		if *jsonErrors {
			enc := json.NewEncoder(stderr)
			enc.SetIndent("", "  ")
			_ = enc.Encode(errors.ToJSON(err))
		} else {
			fmt.Fprintf(stderr, "storefs: %v\n", err)
		}
		return exitError
	}

	settings, err := config.Load(config.Options{
		File:      *configFile,
		EnvFiles:  envFiles,
		LookupEnv: lookupEnv,
	})
	if err != nil {
		return report(err)
	}
	logger := setupLogging(stderr, settings.LogLevel, *verbose)

	name, cmdArgs := flags.Arg(0), flags.Args()[1:]
	cmd, ok := lookupCommand(name)
	if !ok {
		return report(usagef("unknown command %q", name))
	}

	ctx := context.Background()
	client, err := openStore(ctx, settings)
	if err != nil {
		return report(errors.Wrapf(err, errors.CodeInvalidConfig, "open %s store", settings.Backend))
	}

	fsys, err := storefs.New(storefs.Config{
		Scheme:               settings.Scheme,
		Client:               client,
		Logger:               logger,
		MaxDeleteConcurrency: settings.DeleteConcurrency,
	})
	if err != nil {
		return report(err)
	}
	defer func() {
		if err := fsys.Close(); err != nil {
			logger.Warn("close store", "error", err)
		}
	}()

	logger.Debug("running command", "command", name, "settings", settings.String())

	a := &app{fs: fsys, stdin: stdin, stdout: stdout}
	if err := cmd.run(a, cmdArgs); err != nil {
		return report(err)
	}
	return exitOK
}
