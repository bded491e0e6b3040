// sswave lists, exports and imports the wavetables of a Shapeshifter
// firmware image.
package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/fatih/color"
	flag "github.com/spf13/pflag"

	"github.com/cwbudde/sswave"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	errMissingCommand = errors.New("missing command")
	errUnknownCommand = errors.New("unknown command")
	errMissingArgs    = errors.New("missing arguments")
)

func main() {
	err := run(os.Args[1:], os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, flag.ErrHelp) {
		return
	}

	if errors.Is(err, errMissingCommand) || errors.Is(err, errUnknownCommand) {
		usage(os.Stderr)
	}

	log.Fatal(color.RedString("error: ") + err.Error())
}

func run(args []string, out io.Writer) error {
	if len(args) < 1 {
		return errMissingCommand
	}

	cmd, rest := args[0], args[1:]

	switch cmd {
	case "list":
		return runList(rest, out)
	case "export":
		return runExport(rest, out)
	case "import":
		return runImport(rest, out)
	case "inspect":
		return runInspect(rest, out)
	case "mcp":
		return runMCP(rest)
	case "help", "-h", "--help":
		usage(out)
		return nil
	case "version", "--version":
		fmt.Fprintf(out, "sswave %s\n", version)
		return nil
	default:
		return fmt.Errorf("%w %q", errUnknownCommand, cmd)
	}
}

const helpString = `Usage: sswave COMMAND [OPTION]... ARG...

Commands:
  list FIRMWARE             Print the index and name of every wavetable
  export FIRMWARE [NAME]... Write wavetables as audio files
  import FIRMWARE FILE...   Write single cycles into a wavetable
  inspect FILE...           Check audio files against the import rules
  mcp                       Serve the list and export tools over stdio
  help                      Print this help message
  version                   Print version information

Export:
  -a, --all                 Export every wavetable
  -s, --singles             One file per waveform instead of one per table
  -p, --path=DIR            Output directory (default: .)
  -f, --format=FORMAT       wav or aiff (default: wav)

Import:
  -i, --index=NUM           Target wavetable index (default: 0)
  -n, --name=NAME           Target wavetable name, overrides --index
      --start=NUM           First waveform slot to write (default: 0)
  -r, --rename=NAME         New name for the target wavetable
  -o, --output=FILE         Write to a copy of FIRMWARE instead of in place

Common:
  -v, --verbose             Log progress
  -w, --workers=NUM         Decoding goroutines (default: number of CPUs)`

func usage(w io.Writer) {
	color.New(color.FgCyan, color.Bold).Fprintln(w, "sswave - Shapeshifter wavetable tool")
	fmt.Fprintln(w, helpString)
}

// commonFlags are shared by the commands that decode a firmware image.
type commonFlags struct {
	verbose bool
	workers int
}

func newFlagSet(name string, common *commonFlags) *flag.FlagSet {
	flagSet := flag.NewFlagSet(name, flag.ContinueOnError)
	flagSet.BoolVarP(&common.verbose, "verbose", "v", false, "log progress")
	flagSet.IntVarP(&common.workers, "workers", "w", 0, "decoding goroutines")

	return flagSet
}

func (c commonFlags) codec() (*sswave.Codec, error) {
	opts := []sswave.Option{sswave.WithLogger(cliLogger{verbose: c.verbose})}
	if c.workers > 0 {
		opts = append(opts, sswave.WithWorkers(c.workers))
	}

	return sswave.New(opts...)
}

// cliLogger prints codec events through the standard logger when verbose.
type cliLogger struct {
	verbose bool
}

func (l cliLogger) Debug(msg string, kv ...any) {
	if l.verbose {
		log.Println(append([]any{msg}, kv...)...)
	}
}

func (l cliLogger) Info(msg string, kv ...any) {
	if l.verbose {
		log.Println(append([]any{msg}, kv...)...)
	}
}

func (l cliLogger) Error(msg string, kv ...any) {
	if l.verbose {
		log.Println(append([]any{color.YellowString(msg)}, kv...)...)
	}
}

// warn reports a skipped item without failing the command.
func warn(format string, args ...any) {
	log.Print(color.YellowString("warning: ") + fmt.Sprintf(format, args...))
}
