package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/km-arc/go-inject/demo"
	"github.com/km-arc/go-inject/framework/app"
	"github.com/km-arc/go-inject/framework/config"
)

// CLI is the injectdemo command line: it bootstraps an application with the
// demo module and exposes it through subcommands.
type CLI struct {
	rootCmd *cobra.Command

	envFiles []string
	app      *app.Application
}

// New creates the command tree.
func New() *CLI {
	c := &CLI{}
	c.rootCmd = &cobra.Command{
		Use:               "injectdemo",
		Short:             "injectdemo resolves dependencies from the demo application",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.boot,
	}
	c.rootCmd.PersistentFlags().StringSliceVar(&c.envFiles, "env-file", nil, ".env files to load, later files win")

	c.addCmd(&keysCmd{})
	c.addCmd(&resolveCmd{})
	c.addCmd(&greetCmd{})
	c.addCmd(&serveCmd{})
	return c
}

// Exec runs the command selected by os.Args.
func (c *CLI) Exec() error {
	return c.rootCmd.Execute()
}

// Command returns the root command.
func (c *CLI) Command() *cobra.Command { return c.rootCmd }

// App returns the application built for the running command.
func (c *CLI) App() *app.Application { return c.app }

func (c *CLI) boot(_ *cobra.Command, _ []string) error {
	a, err := app.New(config.Load(c.envFiles...))
	if err != nil {
		return err
	}
	if len(c.envFiles) > 0 {
		if err := a.Register(&app.ConfigModule{EnvFiles: c.envFiles}); err != nil {
			return errors.Wrap(err, "load env files")
		}
	}
	if err := a.Register(&demo.Module{}); err != nil {
		return err
	}
	if err := a.Boot(); err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *CLI) addCmd(cmd command) {
	cobraCmd := cmd.registerFlags()
	cobraCmd.RunE = func(innerCmd *cobra.Command, args []string) error {
		return cmd.run(c, innerCmd, args)
	}
	c.rootCmd.AddCommand(cobraCmd)
}

type command interface {
	registerFlags() *cobra.Command
	run(cl *CLI, cmd *cobra.Command, args []string) error
}
