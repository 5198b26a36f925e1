// Command vtftool inspects, exports, imports and serves VTF textures.
//
// Usage:
//
//	vtftool [-config file.yaml] [-env .env] <command> [flags] args...
//
// Commands:
//
//	info      print header details of one or more .vtf files
//	export    decode a mip level or frame to an image file
//	import    build a .vtf from an image file (GIF frames become animation)
//	thumbnail write the low-resolution preview to an image file
//	serve     start the HTTP preview server
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/woozymasta/vtf/internal/config"
	"github.com/woozymasta/vtf/internal/logging"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errUsage marks command line mistakes.
var errUsage = errors.New("usage")

const usage = `usage: vtftool [-config file.yaml] [-env .env] <command> [flags] args...

commands:
  info <file.vtf>...                     print header details
  export [flags] <in.vtf> [out.ext]      decode a level/frame to an image
  import [flags] <in.image> <out.vtf>    build a VTF from an image
  thumbnail <in.vtf> <out.ext>           write the low-res preview
  serve [flags]                          start the preview server
`

// env carries what every command needs.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("vtftool", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	configPath := global.String("config", "", "YAML config file")
	envPath := global.String("env", ".env", "dotenv file loaded before VTFTOOL_* overrides")
	if err := global.Parse(args); err != nil {
		return exitUsage
	}
	if global.NArg() == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	if err := config.LoadDotEnv(*envPath); err != nil {
		fmt.Fprintf(stderr, "vtftool: %v\n", err)
		return exitError
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "vtftool: %v\n", err)
		return exitError
	}

	logger, err := logging.NewWithWriter(cfg.Log.Options(), zapcore.AddSync(stderr))
	if err != nil {
		fmt.Fprintf(stderr, "vtftool: %v\n", err)
		return exitError
	}
	defer func() { _ = logger.Sync() }()

	e := &env{cfg: cfg, logger: logger, stdout: stdout, stderr: stderr}

	command, rest := global.Arg(0), global.Args()[1:]
	var cmdErr error
	switch command {
	case "info":
		cmdErr = e.info(rest)
	case "export":
		cmdErr = e.export(rest)
	case "import":
		cmdErr = e.importImage(rest)
	case "thumbnail":
		cmdErr = e.thumbnail(rest)
	case "serve":
		cmdErr = e.serve(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "vtftool: unknown command %q\n\n%s", command, usage)
		return exitUsage
	}

	switch {
	case cmdErr == nil:
		return exitOK
	case errors.Is(cmdErr, flag.ErrHelp):
		return exitOK
	case errors.Is(cmdErr, errUsage):
		fmt.Fprintf(stderr, "vtftool %s: %v\n", command, cmdErr)
		return exitUsage
	default:
		logger.Error("command failed", zap.String("command", command), zap.Error(cmdErr))
		return exitError
	}
}

// flagSet returns a subcommand flag set writing to stderr.
func (e *env) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet("vtftool "+name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

// parse parses args and wraps mistakes in errUsage.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	return nil
}
