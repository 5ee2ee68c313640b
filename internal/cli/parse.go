package cli

import (
	stderrors "errors"
	"io"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/attackbuild/internal/catalog"
	"git.home.luguber.info/inful/attackbuild/internal/config"
	"git.home.luguber.info/inful/attackbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/attackbuild/internal/version"
)

const description = "Build the ATT&CK website.\nTo run a complete build, run without --modules."

// variadicFlags maps every spelling of a space-separated list flag to its
// canonical long form.
var variadicFlags = map[string]string{
	"-m":        "--modules",
	"--modules": "--modules",
	"-t":        "--test",
	"--test":    "--test",
}

// boolShorts are the short flags that take no value and may prefix a list
// flag in a group such as "-rm".
const boolShorts = "rv"

// splitGroup splits a grouped short token ("-rm") whose last letter is a list
// flag into its separate boolean flags and the list flag's long form.
func splitGroup(arg string) ([]string, string, bool) {
	if len(arg) < 3 || arg[0] != '-' || arg[1] == '-' {
		return nil, "", false
	}
	long, ok := variadicFlags["-"+arg[len(arg)-1:]]
	if !ok {
		return nil, "", false
	}
	flags := make([]string, 0, len(arg)-2)
	for _, c := range arg[1 : len(arg)-1] {
		if !strings.ContainsRune(boolShorts, c) {
			return nil, "", false
		}
		flags = append(flags, "-"+string(c))
	}
	return flags, long, true
}

// ExpandVariadic rewrites space-separated list flags ("-m clean techniques")
// into the comma-separated form kong parses ("--modules=clean,techniques").
// Values run until the next token starting with "-". A list flag without
// values is dropped, which is the same as not passing it. Tokens after "--"
// are left untouched. Grouped boolean flags ending in a list flag ("-rm a b")
// are split into "-r --modules=a,b".
func ExpandVariadic(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		long, ok := variadicFlags[arg]
		if !ok {
			var flags []string
			if flags, long, ok = splitGroup(arg); !ok {
				out = append(out, arg)
				continue
			}
			out = append(out, flags...)
		}
		var values []string
		for i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
			values = append(values, args[i])
		}
		if len(values) > 0 {
			out = append(out, long+"="+strings.Join(values, ","))
		}
	}
	return out
}

// Options for building the parser.
type parserOptions struct {
	stdout io.Writer
	stderr io.Writer
	exit   func(int)
}

// ParserOption customizes NewParser.
type ParserOption func(*parserOptions)

// WithOutput redirects help and usage output.
func WithOutput(stdout, stderr io.Writer) ParserOption {
	return func(o *parserOptions) {
		o.stdout = stdout
		o.stderr = stderr
	}
}

// WithExit replaces os.Exit for --help and --version.
func WithExit(exit func(int)) ParserOption {
	return func(o *parserOptions) { o.exit = exit }
}

// NewParser builds the kong parser for opts.
func NewParser(opts *Options, popts ...ParserOption) (*kong.Kong, error) {
	po := &parserOptions{}
	for _, o := range popts {
		o(po)
	}
	kopts := []kong.Option{
		kong.Name("attackbuild"),
		kong.Description(description),
		kong.UsageOnError(),
		kong.Vars{
			"modules":     strings.Join(catalog.ModuleNames, ", "),
			"tests":       strings.Join(catalog.TestNames, ", "),
			"config_path": config.DefaultPath,
			"version":     version.String(),
		},
	}
	if po.stdout != nil {
		kopts = append(kopts, kong.Writers(po.stdout, po.stderr))
	}
	if po.exit != nil {
		kopts = append(kopts, kong.Exit(po.exit))
	}
	return kong.New(opts, kopts...)
}

// Parse resolves args (without the program name). Parse errors and
// vocabulary violations are returned as validation errors.
func Parse(args []string, popts ...ParserOption) (*Options, error) {
	opts := &Options{}
	parser, err := NewParser(opts, popts...)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "failed to build command line parser").Build()
	}
	if _, err := parser.Parse(ExpandVariadic(args)); err != nil {
		var perr *kong.ParseError
		if stderrors.As(err, &perr) && perr.Context != nil {
			// Usage goes to stderr next to the error, like any usage failure.
			parser.Stdout = parser.Stderr
			_ = perr.Context.PrintUsage(true)
		}
		if errors.HasCategory(err, errors.CategoryValidation) {
			return nil, err
		}
		return nil, errors.WrapError(err, errors.CategoryValidation, "invalid arguments").Fatal().Build()
	}
	return opts, nil
}
