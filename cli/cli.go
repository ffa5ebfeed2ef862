package cli

import (
	"context"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tempita/cli/cmd"
	"github.com/ardnew/tempita/pkg"
)

// CLI is the top-level command line of tempita.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print the version and exit" short:"V"`

	Fill  cmd.Fill  `cmd:"" default:"withargs" help:"Render a template"`
	Parse cmd.Parse `cmd:""                    help:"Print the syntax tree of a template"`
	Lex   cmd.Lex   `cmd:""                    help:"Print the tokens of a template"`
}

// Run parses args and executes the selected command, reading templates
// named "-" from stdin and writing results to stdout. Parse failures and
// help requests call exit.
func Run(ctx context.Context, exit func(code int), args ...string) error {
	return run(ctx, exit, os.Stdin, os.Stdout, args...)
}

func run(
	ctx context.Context,
	exit func(code int),
	stdin io.Reader,
	stdout io.Writer,
	args ...string,
) error {
	var cli CLI

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logger flags take effect before parsing so that parse errors are
	// logged as requested wherever the flags appear.
	cli.Log.scan(args)

	path := configPath()

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.Writers(stdout, os.Stderr),
		kong.ExplicitGroups([]kong.Group{cli.Log.group(), cli.Pprof.group()}),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, path+".json"),
		kong.Configuration(resolve, path+".yaml", path+".yml"),
		kong.Vars{
			"version":            pkg.Version,
			cmd.ConfigIdentifier: path,
			cmd.CacheIdentifier:  cacheDir(),
		}.CloneWith(cli.Log.vars()).CloneWith(cli.Pprof.vars()),
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithIO(ctx, stdin, stdout)
	ktx.BindTo(ctx, (*context.Context)(nil))

	cli.Log.start(ctx)

	defer cli.Pprof.start(ctx)()

	return ktx.Run()
}
