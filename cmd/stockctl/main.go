// Command stockctl is an operator CLI for the inventory API.
//
//	stockctl [--api URL] [--token TOKEN] [--timeout 15s] <command> [flags] [args]
//
// Global flags fall back to STOCKCTL_API, STOCKCTL_TOKEN and STOCKCTL_TIMEOUT.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"inventory/pkg/apiclient"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `usage: stockctl [global flags] <command> [flags] [args]

commands:
  login <username> <password>   print a bearer token
  list [--query q] [--low-stock]
  show <id>
  add --name NAME [--price P] [--stock N] [--sku S] [--description D] [--image-url U | --image-file PATH]
  edit <id> [same flags as add; only the ones given are sent]
  delete <id>
  upload <path>                 upload an image and print its URL

global flags:
`

// errUsage marks a command line the user has to fix.
var errUsage = errors.New("usage error")

type command func(ctx context.Context, env *env, args []string) error

var commands = map[string]command{
	"login":  runLogin,
	"list":   runList,
	"show":   runShow,
	"add":    runAdd,
	"edit":   runEdit,
	"delete": runDelete,
	"upload": runUpload,
}

// env is what every command gets to work with.
type env struct {
	client *apiclient.Client
	log    zerolog.Logger
	stdout io.Writer
	stderr io.Writer
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("stockctl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.String("api", "http://localhost:8080/api", "API base URL")
	fs.String("token", "", "bearer token")
	fs.Duration("timeout", apiclient.DefaultTimeout, "per-request timeout")
	verbose := fs.BoolP("verbose", "v", false, "log requests")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	v := viper.New()
	v.SetEnvPrefix("STOCKCTL")
	v.AutomaticEnv()
	for _, name := range []string{"api", "token", "timeout"} {
		if err := v.BindPFlag(name, fs.Lookup(name)); err != nil {
			fmt.Fprintf(stderr, "bind %s: %v\n", name, err)
			return exitError
		}
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return exitUsage
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", rest[0])
		fs.Usage()
		return exitUsage
	}

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	client, err := apiclient.New(v.GetString("api"),
		apiclient.WithToken(v.GetString("token")),
		apiclient.WithTimeout(v.GetDuration("timeout")),
		apiclient.WithLogger(log),
	)
	if err != nil {
		fmt.Fprintf(stderr, "stockctl: %v\n", err)
		return exitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := &env{client: client, log: log, stdout: stdout, stderr: stderr}
	if err := cmd(ctx, e, rest[1:]); err != nil {
		fmt.Fprintf(stderr, "stockctl %s: %v\n", rest[0], err)
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}
