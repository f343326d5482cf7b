package viewer

import (
	"context"
	"fmt"
	"io"
	"sort"

	"f0oster/adspyview/activedirectory/formatters"
	"f0oster/adspyview/config"
	"f0oster/adspyview/database"
	"f0oster/adspyview/gateway"
	"f0oster/adspyview/render"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
)

const defaultEnvFile = "settings.env"

// app holds what the commands share once the root Before hook has run.
type app struct {
	out      io.Writer
	cfg      config.ViewerConfiguration
	client   *gateway.Client
	db       *database.Database
	reader   gateway.HistoryReader
	renderer *render.Renderer
}

// NewCommand builds the adspy-view command tree. Output goes to out.
func NewCommand(out io.Writer) *cli.Command {
	a := &app{out: out}

	root := &cli.Command{
		Name:   "adspy-view",
		Usage:  "Browse the change history of Active Directory objects",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env",
				Usage: "dotenv file to load settings from",
				Value: defaultEnvFile,
			},
			&cli.StringFlag{
				Name:  "api",
				Usage: "adSpy API base URL (overrides " + config.EnvAPIBase + ")",
			},
			&cli.StringFlag{
				Name:  "dsn",
				Usage: "read history straight from this PostgreSQL DSN (overrides " + config.EnvDSN + ")",
			},
			&cli.BoolFlag{
				Name:  "color",
				Usage: "enable colored text output (overrides " + config.EnvColor + ")",
			},
		},
		Before: a.before,
		After:  a.after,
		Commands: []*cli.Command{
			a.objectsCommand(),
			a.objectCommand(),
			a.typesCommand(),
			a.timelineCommand(),
			a.changesCommand(),
			a.sddiffCommand(),
			a.compareCommand(),
			a.serveCommand(),
		},
	}

	for _, cmd := range root.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return root
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := config.LoadEnvConfig(cmd.String("env"))
	if err != nil {
		return ctx, err
	}
	if cmd.IsSet("api") {
		cfg.APIBase = cmd.String("api")
	}
	if cmd.IsSet("dsn") {
		cfg.DSN = cmd.String("dsn")
	}
	if cmd.IsSet("color") {
		cfg.Color = cmd.Bool("color")
	}
	log.Debugf("config: api=%s dsn set=%t color=%t", cfg.APIBase, cfg.DSN != "", cfg.Color)

	client, err := gateway.NewClient(gateway.Config{BaseURL: cfg.APIBase, Timeout: cfg.Timeout})
	if err != nil {
		return ctx, err
	}

	a.cfg = cfg
	a.client = client
	a.renderer = render.New(a.out, render.Options{
		Color:    cfg.Color,
		Registry: formatters.NewRegistry(),
	})
	return ctx, nil
}

func (a *app) after(context.Context, *cli.Command) error {
	if a.db != nil {
		a.db.Close()
	}
	return nil
}

// history returns the reader for object history. With a DSN configured the
// database is opened on first use; otherwise the API serves reads.
func (a *app) history(ctx context.Context) (gateway.HistoryReader, error) {
	if a.reader != nil {
		return a.reader, nil
	}
	if a.cfg.DSN == "" {
		a.reader = a.client
		return a.reader, nil
	}

	db := database.NewDatabase(a.cfg.DSN)
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	a.db = db
	a.reader = db.Store()
	return a.reader, nil
}

// differ returns the SD diff backend. Decoding descriptors is always done by
// the API service.
func (a *app) differ() gateway.SDDiffer {
	return a.client
}
