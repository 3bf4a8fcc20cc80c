package appconfig

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/docopt/docopt-go"
)

const Usage = `Usage:
  profiterole [<config>] [--jobs <n>] [--verify] [--verbose]
  profiterole --help
  profiterole --version

profiterole runs the AWS SSO browser login, then turns every account/role
pair your identity can assume into a named profile in the AWS config and
credentials files.

Arguments:
  <config>    Path to the settings file (defaults to config.ini)

Options:
  -j <n>, --jobs <n>    Concurrent credential fetches [default: 4]
  --verify              Check each written profile with an STS identity call
  --verbose             Enable verbose output
  --help                Show this help message
  --version             Show the version`

// DefaultConfigFile is the settings path used when none is given on the
// command line, resolved relative to the working directory.
const DefaultConfigFile = "config.ini"

type Options struct {
	Config  string `docopt:"<config>"`
	Jobs    int    `docopt:"--jobs"`
	Verify  bool   `docopt:"--verify"`
	Verbose bool   `docopt:"--verbose"`
}

func setLogger(verbose bool) error {
	level := slog.LevelInfo

	if verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

func (o *Options) Parse(args []string) error {
	opts, err := docopt.ParseArgs(Usage, args, "profiterole 0.1")
	if err != nil {
		return fmt.Errorf("error parsing options: %v", err)
	}

	// BIND COMMAND LINE ARGS TO OPTIONS
	if err := opts.Bind(o); err != nil {
		return fmt.Errorf("error binding options: %v", err)
	}

	if o.Config == "" {
		o.Config = DefaultConfigFile
	}
	if o.Jobs < 1 {
		o.Jobs = 1
	}

	// SETUP LOGGING
	if err := setLogger(o.Verbose); err != nil {
		fmt.Printf("Error setting logger: %v\n", err)
	}

	return nil
}
