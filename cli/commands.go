package cli

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/luci/go-render/render"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/km-arc/go-inject/demo"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/inject"
)

// ── keys ──────────────────────────────────────────────────────────────────────

type keysCmd struct{}

func (c *keysCmd) registerFlags() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List factory keys, resource namespaces and tags",
		Args:  cobra.NoArgs,
	}
}

func (c *keysCmd) run(cl *CLI, cmd *cobra.Command, _ []string) error {
	a := cl.App()
	out := cmd.OutOrStdout()

	var keys []string
	for _, k := range a.Factories.Keys() {
		keys = append(keys, container.Describe(k))
	}
	sort.Strings(keys)

	fmt.Fprintln(out, "factories:")
	for _, k := range keys {
		fmt.Fprintln(out, "  "+k)
	}
	fmt.Fprintln(out, "namespaces:")
	for _, ns := range a.Resources.Namespaces() {
		fmt.Fprintln(out, "  "+ns)
	}
	fmt.Fprintln(out, "tags:")
	for _, t := range a.Tags.TagNames() {
		members, _ := a.Tags.Members(t)
		fmt.Fprintf(out, "  %s (%d)\n", t, len(members))
	}
	return nil
}

// ── resolve ───────────────────────────────────────────────────────────────────

type resolveCmd struct {
	args   []string
	kwargs []string
}

func (c *resolveCmd) registerFlags() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve KEY",
		Short: "Resolve a key and print the instance",
		Long: "Resolve a string key. With --arg or --kwarg the key is resolved as a " +
			"parameterized dependency, e.g. resolve conn --arg db.internal --kwarg timeout=2s",
		Args: cobra.ExactArgs(1),
	}
	cmd.Flags().StringArrayVar(&c.args, "arg", nil, "positional construction argument")
	cmd.Flags().StringArrayVar(&c.kwargs, "kwarg", nil, "named construction argument, name=value")
	return cmd
}

func (c *resolveCmd) run(cl *CLI, cmd *cobra.Command, args []string) error {
	key, err := c.key(args[0])
	if err != nil {
		return err
	}
	v, err := cl.App().Get(key)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), show(v))
	return nil
}

func (c *resolveCmd) key(id string) (container.Key, error) {
	if len(c.args) == 0 && len(c.kwargs) == 0 {
		return id, nil
	}
	positional := make([]any, len(c.args))
	for i, a := range c.args {
		positional[i] = a
	}
	b := container.NewBuild(id, positional...)
	for _, kv := range c.kwargs {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, errors.Errorf("invalid --kwarg %q, want name=value", kv)
		}
		b = b.With(name, value)
	}
	return b, nil
}

func show(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	if s, ok := v.(string); ok {
		return s
	}
	return render.Render(v)
}

// ── greet ─────────────────────────────────────────────────────────────────────

type greetCmd struct {
	punctuation string
}

func (c *greetCmd) registerFlags() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "greet NAME",
		Short: "Call the injected greet function",
		Args:  cobra.ExactArgs(1),
	}
	cmd.Flags().StringVar(&c.punctuation, "punctuation", "", "overrides the default punctuation")
	return cmd
}

func (c *greetCmd) run(cl *CLI, cmd *cobra.Command, args []string) error {
	greet, err := container.Resolve[*inject.Injected](cl.App(), demo.GreetKey)
	if err != nil {
		return err
	}
	var kwargs map[string]any
	if c.punctuation != "" {
		kwargs = map[string]any{"punctuation": c.punctuation}
	}
	msg, err := greet.CallNamed([]any{args[0]}, kwargs)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), msg)
	return nil
}

// ── serve ─────────────────────────────────────────────────────────────────────

type serveCmd struct {
	addr   string
	prefix string
}

func (c *serveCmd) registerFlags() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inspection endpoints over HTTP",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&c.addr, "addr", "", "listen address (default INSPECT_ADDR)")
	cmd.Flags().StringVar(&c.prefix, "prefix", "", "mount point of the endpoints (default INSPECT_PREFIX)")
	return cmd
}

func (c *serveCmd) run(cl *CLI, _ *cobra.Command, _ []string) error {
	a := cl.App()
	if c.addr != "" {
		a.Config.Inspect.Addr = c.addr
	}
	if c.prefix != "" {
		a.Config.Inspect.Prefix = c.prefix
	}
	handler, err := a.InspectHandler()
	if err != nil {
		return err
	}
	a.Logger.WithFields(logrus.Fields{
		"addr":   a.Config.Inspect.Addr,
		"prefix": a.Config.Inspect.Prefix,
		"auth":   a.Config.Inspect.Token != "",
	}).Info("serving inspection endpoints")
	return errors.Wrap(http.ListenAndServe(a.Config.Inspect.Addr, handler), "serve")
}
