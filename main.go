package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/mcncl/cafkit/internal/config"
	"github.com/mcncl/cafkit/internal/errors"
)

// Version information
const (
	Version = "0.1.0"
)

// Globals are the flags shared by every command
type Globals struct {
	Config  string           `help:"Path to a .cafkit.yml config file. Searched upward from the working directory when not set." type:"path"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`
}

// CLI defines the command-line interface
type CLI struct {
	Globals

	Fmt      FmtCmd      `cmd:"" help:"Parse a CAF document and write it back."`
	JSON     JSONCmd     `cmd:"" name:"json" help:"Print the commands of a CAF document as JSON."`
	FromJSON FromJSONCmd `cmd:"" name:"from-json" help:"Build a #commands section from JSON and a type registry."`
	Query    QueryCmd    `cmd:"" help:"Run a JSONPath expression over a CAF document."`
	Check    CheckCmd    `cmd:"" help:"Resolve the manifests and imports reachable from a CAF document."`
	Schema   SchemaCmd   `cmd:"" help:"Convert a JSON Schema into a YAML type registry."`
}

// Context holds the runtime context passed to every command
type Context struct {
	Config *config.Config
	Logger *slog.Logger
	Stdin  io.Reader
	Stdout io.Writer
}

func newParser(cli *CLI) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("cafkit"),
		kong.Description("Format, query and convert CAF documents."),
		kong.UsageOnError(),
		kong.Vars{"version": Version},
	)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	ctx, err := newContext(&cli.Globals, os.Stdin, os.Stdout, os.Stderr)
	if err == nil {
		err = kctx.Run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: cafkit --help\n")
		os.Exit(1)
	}
}

// newContext loads the configuration and sets up logging.
func newContext(g *Globals, stdin io.Reader, stdout, stderr io.Writer) (*Context, error) {
	configPath := g.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigWithCLI(configPath, config.CLIOverrides{Debug: g.Debug})
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to load config '%s': %v", configPath, err), err)
	}

	logger := newLogger(cfg, stderr)
	if configPath != "" {
		logger.Debug("config loaded", "path", configPath)
	}
	return &Context{
		Config: cfg,
		Logger: logger,
		Stdin:  stdin,
		Stdout: stdout,
	}, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case cfg.Dev.Debug:
		level = slog.LevelDebug
	case cfg.Dev.Verbose:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
