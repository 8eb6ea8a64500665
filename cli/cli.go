package cli

import (
	"context"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/stargn/cli/cmd"
	"github.com/ardnew/stargn/lang"
	"github.com/ardnew/stargn/pkg"
)

// CLI is the top-level command-line interface for stargn.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Root       string   `default:"."        help:"Source root that '//' paths are relative to"                 short:"C" type:"existingdir"`
	ImportPath []string `                   help:"Source-absolute directories searched for imports"           name:"import-path" short:"I"`
	Quoting    string   `default:"verbatim" help:"How string values are quoted in GN (${enum})"               enum:"verbatim,escaped"`
	Builtins   []string `                   help:"Declaration functions available to scripts (default: ${builtins})"`

	Gen       cmd.Gen       `cmd:"" default:"withargs" help:"Evaluate build scripts and check the target graph"`
	Desc      cmd.Desc      `cmd:""                    help:"Describe declared targets"`
	Query     cmd.Query     `cmd:""                    help:"List targets matching a predicate"`
	Translate cmd.Translate `cmd:""                    help:"Print the GN statements build scripts produce"`
	Repl      cmd.Repl      `cmd:""                    help:"Evaluate statements interactively"`
	Init      cmd.Init      `cmd:""                    help:"Initialize configuration file"`
}

// workspace returns the workspace selected by the global flags.
func (c *CLI) workspace() *cmd.Workspace {
	return &cmd.Workspace{
		Root:       c.Root,
		ImportPath: c.ImportPath,
		Quoting:    lang.ParseQuoting(c.Quoting),
		Builtins:   c.Builtins,
	}
}

// Run parses args and runs the selected command. Parse failures and --help
// end the process through exit.
func Run(ctx context.Context, exit func(code int), args ...string) error {
	if err := mkdirAllRequired(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var cli CLI

	// Logging flags take effect before parsing so that kong's own errors
	// are logged as requested.
	cli.Log.scan(args)

	parser, err := cli.parser(ctx, exit)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithWorkspace(cmd.WithContext(ctx, ktx), cli.workspace())

	cli.Log.start(ctx)
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

// parser builds the kong parser for c. Flag defaults are read from the JSON
// and YAML configuration files, where the YAML file wins.
func (c *CLI) parser(ctx context.Context, exit func(int)) (*kong.Kong, error) {
	conf := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: conf,
		cmd.CacheIdentifier:  pkg.CacheDir(),
		"builtins":           strings.Join(lang.DefaultBuiltins, ", "),
	}

	return kong.New(c,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{c.Log.group(), c.Pprof.group()}),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, configPath("config.json")),
		kong.Configuration(resolve(ctx, cmd.ConfigIdentifier), conf),
		vars.CloneWith(c.Log.vars()).CloneWith(c.Pprof.vars()),
	)
}
