package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/lambda-settings/internal/config"
	"github.com/eugenenazirov/lambda-settings/internal/settings"
	"github.com/eugenenazirov/lambda-settings/internal/sources"
	"github.com/eugenenazirov/lambda-settings/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, sources.Environ())
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, env map[string]string) int {
	app := kingpin.New("settings", "Resolves and inspects the configuration shared by the Lambda functions")
	app.Version(version.Semantic())
	app.UsageWriter(stdout)
	app.ErrorWriter(stderr)
	exited := false
	app.Terminate(func(int) { exited = true })
	opts := config.RegisterSettingsFlags(app)

	dumpCmd := app.Command("dump", "Print the redacted settings dump")
	format := dumpCmd.Flag("format", "Output format").Default("json").Enum("json", "yaml")
	validateCmd := app.Command("validate", "Resolve settings and report every configuration error")
	watchCmd := app.Command("watch", "Validate again whenever a dotenv or tfvars file changes")

	command, err := app.Parse(args)
	if exited {
		// --help or --version already printed their output.
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "settings: %v\n", err)
		return 2
	}

	if command == watchCmd.FullCommand() {
		return watch(ctx, opts, env, stdout, stderr)
	}

	s, err := config.LoadSettings(ctx, opts, env)
	if err != nil {
		reportErrors(stderr, err)
		return 1
	}

	switch command {
	case dumpCmd.FullCommand():
		if err := writeDump(stdout, s, *format); err != nil {
			fmt.Fprintf(stderr, "settings: %v\n", err)
			return 1
		}
	case validateCmd.FullCommand():
		printValid(stdout, s)
	}
	return 0
}

func printValid(w io.Writer, s *settings.Settings) {
	fmt.Fprintf(w, "settings are valid (aws_region=%s, dotenv=%t, tfvars=%t)\n",
		s.AWSRegion(), s.IsUsingDotenvFile(), s.IsUsingTFVarsFile())
}

// watch keeps validating until ctx is cancelled. Invalid intermediate states
// are reported, not fatal.
func watch(ctx context.Context, opts *config.SettingsOptions, env map[string]string, stdout, stderr io.Writer) int {
	files, err := opts.Files()
	if err != nil {
		fmt.Fprintf(stderr, "settings: %v\n", err)
		return 1
	}

	validate := func() {
		s, err := config.LoadSettings(ctx, opts, env)
		if err != nil {
			reportErrors(stderr, err)
			return
		}
		printValid(stdout, s)
	}

	validate()
	err = sources.Watch(ctx, files, func(path string) {
		fmt.Fprintf(stdout, "%s changed\n", path)
		validate()
	})
	if err != nil {
		fmt.Fprintf(stderr, "settings: %v\n", err)
		return 1
	}
	return 0
}

func writeDump(w io.Writer, s *settings.Settings, format string) error {
	dump := s.Dump()
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(dump); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dump); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// reportErrors prints one line per joined resolution error.
func reportErrors(w io.Writer, err error) {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		for _, e := range joined.Unwrap() {
			fmt.Fprintf(w, "settings: %v\n", e)
		}
		return
	}
	fmt.Fprintf(w, "settings: %v\n", err)
}
