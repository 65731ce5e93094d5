package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/icpkit/idlbridge/pkg/bridge"
	"github.com/icpkit/idlbridge/pkg/logging"
)

var version string

const usage = `usage: idlcall [flags] <command> [argument]

commands:
  encode [arguments]   encode method arguments, prints the message as hex
  decode [hex]         decode a result message
  check [file.did]     type check an interface file and list its methods

Arguments and messages are read from the standard input if omitted.

flags:
`

type options struct {
	candid      string
	method      string
	inputType   string
	outputType  string
	showHelp    bool
	showVersion bool
	logging     logging.Parameters
	command     string
	args        []string
}

func newFlagSet(opts *options) *flag.FlagSet {
	fs := flag.NewFlagSet("idlcall", flag.ContinueOnError)
	fs.StringVarP(&opts.candid, "candid", "c", "", "Path to the interface description (.did) file of the canister")
	fs.StringVarP(&opts.method, "method", "m", "", "Name of the method whose types are used for encoding and decoding")
	fs.StringVarP(&opts.inputType, "type", "t", "idl", "Format of the arguments to encode: idl or raw")
	fs.StringVarP(&opts.outputType, "output", "o", "pp", "Format of the decoded result: idl, pp or raw")
	fs.BoolVarP(&opts.showHelp, "help", "h", false, "Print usage information (this message) and quit")
	fs.BoolVarP(&opts.showVersion, "version", "v", false, "Print version information and quit")
	opts.logging.Initialize(fs)
	return fs
}

func parseOptions(args []string) (*options, error) {
	opts := new(options)
	fs := newFlagSet(opts)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := opts.logging.Parse(); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		opts.command = fs.Arg(0)
		opts.args = fs.Args()[1:]
	}
	return opts, nil
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "idlcall: %v\n", err)
		showUsageAndExit(2)
	}
	if opts.showHelp {
		showUsageAndExit(0)
	}
	if opts.showVersion {
		fmt.Printf("idlcall %s\n", version)
		os.Exit(0)
	}
	if opts.command == "" {
		showUsageAndExit(2)
	}
	logger, err := logging.DefaultLogger(opts.logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "idlcall: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(opts, afero.NewOsFs(), os.Stdin, os.Stdout, logger); err != nil {
		logger.Error("Command failed", zap.String("command", opts.command),
			zap.Stringer("kind", bridge.GetErrorKind(err)), logging.Error(err))
		os.Exit(1)
	}
}

func showUsageAndExit(code int) {
	fmt.Print(usage)
	fs := newFlagSet(new(options))
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	os.Exit(code)
}

type app struct {
	opts   *options
	loader *bridge.Loader
	codec  *bridge.Codec
	stdin  io.Reader
	stdout io.Writer
}

func run(opts *options, fs afero.Fs, stdin io.Reader, stdout io.Writer, logger *zap.Logger) error {
	a := &app{
		opts:   opts,
		loader: bridge.NewLoader(fs, logger.Named("loader")),
		codec:  bridge.NewCodec(logger.Named("codec")),
		stdin:  stdin,
		stdout: stdout,
	}
	switch opts.command {
	case "encode":
		return a.encode()
	case "decode":
		return a.decode()
	case "check":
		return a.check()
	default:
		return errors.Errorf("unknown command %q", opts.command)
	}
}

// input returns the command argument or, if there is none, everything from the standard input.
// It is nil when neither gives any text.
func (a *app) input() (*string, error) {
	if len(a.opts.args) > 0 {
		text := strings.Join(a.opts.args, " ")
		return &text, nil
	}
	b, err := io.ReadAll(a.stdin)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read standard input")
	}
	if len(b) == 0 {
		return nil, nil
	}
	text := strings.TrimRight(string(b), "\r\n")
	return &text, nil
}

func (a *app) signature() *bridge.Signature {
	if a.opts.method == "" {
		return nil
	}
	sig, ok := a.loader.BestEffortSignature(a.opts.candid, a.opts.method)
	if !ok {
		return nil
	}
	return sig
}

func (a *app) encode() error {
	arguments, err := a.input()
	if err != nil {
		return err
	}
	blob, err := a.codec.EncodeArguments(arguments, a.opts.inputType, a.signature())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, hex.EncodeToString(blob))
	return err
}

func (a *app) decode() error {
	text, err := a.input()
	if err != nil {
		return err
	}
	if text == nil {
		text = new(string)
	}
	blob, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(*text), "0x"))
	if err != nil {
		return bridge.InvalidArgument.Wrap(err, "Message is not a valid hex string")
	}
	out, err := a.codec.Render(blob, a.opts.outputType, a.signature())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, out)
	return err
}

func (a *app) check() error {
	path := a.opts.candid
	if len(a.opts.args) > 0 {
		path = a.opts.args[0]
	}
	if path == "" {
		return errors.New("no interface file given")
	}
	env, actor, err := a.loader.CheckFile(path)
	if err != nil {
		return err
	}
	for _, name := range env.Names() {
		t, _ := env.Find(name)
		if _, err := fmt.Fprintf(a.stdout, "type %s = %s;\n", name, t); err != nil {
			return err
		}
	}
	if actor == nil {
		return nil
	}
	for _, m := range actor.Methods {
		sig, ok := bridge.LookupMethod(env, actor, m.Name)
		if !ok {
			return errors.Errorf("method %q is not a function", m.Name)
		}
		if _, err := fmt.Fprintln(a.stdout, sig); err != nil {
			return err
		}
	}
	return nil
}
