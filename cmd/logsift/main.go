package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/vburojevic/logsift/internal/cli"
	"github.com/vburojevic/logsift/internal/config"
)

const quickStart = `logsift - search structured log files

START HERE:
  logsift search app.log --severity warn --direction above

Sources:
  logsift search app.log                 a file (re-read on every search)
  logsift search --cmd 'journalctl -n 500'   a shell command's stdout
  cat app.log | logsift search -         stdin

Other useful commands:
  logsift summary app.log --by application
  logsift patterns                      list patterns for --pattern
  logsift ui app.log                    browse results interactively
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	cfg, path, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg, path = config.Default(), ""
	}

	var c cli.CLI
	ctx := kong.Parse(&c,
		kong.Name("logsift"),
		kong.Description("Search log files, command output and text with patterns, time windows and field predicates"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		cli.KongVars(cfg),
	)

	globals := cli.NewGlobalsWithConfig(&c, cfg)
	globals.ConfigFile = path
	if err := ctx.Run(globals); err != nil {
		os.Exit(1)
	}
}

// loadConfig honors --config before kong parses, since config supplies flag defaults
func loadConfig(args []string) (*config.Config, string, error) {
	for i, arg := range args {
		var path string
		switch {
		case arg == "--config" && i+1 < len(args):
			path = args[i+1]
		case len(arg) > len("--config=") && arg[:len("--config=")] == "--config=":
			path = arg[len("--config="):]
		default:
			continue
		}
		cfg, err := config.LoadFromFile(path)
		return cfg, path, err
	}
	cfg, err := config.Load()
	return cfg, config.ConfigFile(), err
}
