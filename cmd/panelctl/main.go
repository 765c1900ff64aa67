// Command panelctl drives the resource API from a terminal: it can check
// credentials, list resources, add a resource and adjust a quantity.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/andreasstove999/resource-panel/internal/clients"
	"github.com/andreasstove999/resource-panel/internal/config"
	"github.com/andreasstove999/resource-panel/internal/panel"
	"github.com/andreasstove999/resource-panel/internal/terminal"
)

const usage = `usage: panelctl [-api URL] [-v] <command> [flags]

commands:
  login   -u USER -p PASSWORD
  list
  add     -name NAME -max UNITS
  adjust  -name NAME -delta N
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("panelctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	apiURL := fs.String("api", cfg.APIBaseURL, "resource API base URL")
	verbose := fs.Bool("v", false, "log requests to stderr")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(stderr, "[panelctl] ", log.LstdFlags)
	}

	base, err := clients.NewClient("resource-api", *apiURL, &http.Client{Timeout: cfg.UpstreamTimeout})
	if err != nil {
		return err
	}
	c := &cli{
		panel:  panel.New(clients.NewResourceClient(base), nil, logger),
		render: terminal.NewRenderer(stdout),
		stdout: stdout,
		stderr: stderr,
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "login":
		return c.login(ctx, rest)
	case "list":
		return c.list(ctx)
	case "add":
		return c.add(ctx, rest)
	case "adjust":
		return c.adjust(ctx, rest)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return errUsage
	}
}

type cli struct {
	panel  *panel.Panel
	render *terminal.Renderer
	stdout io.Writer
	stderr io.Writer
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	user := fs.String("u", "", "username")
	pass := fs.String("p", "", "password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	out := c.panel.Login(ctx, *user, *pass)
	if out.Alert != "" {
		return errors.New(out.Alert)
	}
	fmt.Fprintf(c.stdout, "logged in as %s\n", out.Principal)
	return nil
}

func (c *cli) list(ctx context.Context) error {
	list := c.panel.LoadResources(ctx)
	if err := c.render.Render(list); err != nil {
		return err
	}
	if list.State != panel.ListReady {
		return errors.New(panel.MsgLoadFailed)
	}
	return nil
}

func (c *cli) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	name := fs.String("name", "", "resource name")
	maxUnits := fs.String("max", "", "maximum number of units")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	return c.apply(c.panel.AddResource(ctx, *name, *maxUnits))
}

func (c *cli) adjust(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("adjust", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	name := fs.String("name", "", "resource name")
	delta := fs.Int("delta", 0, "quantity change, usually 1 or -1")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *name == "" || *delta == 0 {
		fs.Usage()
		return errUsage
	}

	return c.apply(c.panel.UpdateQuantity(ctx, *name, *delta))
}

func (c *cli) apply(out panel.Outcome) error {
	if out.Alert != "" {
		return errors.New(out.Alert)
	}
	if out.List == nil {
		return nil
	}
	return c.render.Render(*out.List)
}
