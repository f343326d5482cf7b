package viewer

import (
	"context"
	"fmt"
	"strconv"

	"f0oster/adspyview/activedirectory/formatters"
	"f0oster/adspyview/diff"
	"f0oster/adspyview/gateway"
	"f0oster/adspyview/web"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
)

func requireArgs(cmd *cli.Command, n int) error {
	if cmd.Args().Len() != n {
		return fmt.Errorf("%s expects %d argument(s): %s", cmd.Name, n, cmd.ArgsUsage)
	}
	return nil
}

func parseUSN(s string) (int64, error) {
	usn, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid USN %q: %w", s, err)
	}
	return usn, nil
}

func (a *app) objectsCommand() *cli.Command {
	return &cli.Command{
		Name:  "objects",
		Usage: "list tracked objects",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "type", Usage: "only objects of this type"},
			&cli.StringFlag{Name: "search", Usage: "match against the distinguished name"},
			&cli.IntFlag{Name: "limit", Usage: "page size (defaults to ADSPY_PAGE_SIZE)"},
			&cli.IntFlag{Name: "offset", Usage: "number of objects to skip"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			reader, err := a.history(ctx)
			if err != nil {
				return err
			}

			params := gateway.ListParams{
				Type:   cmd.String("type"),
				Search: cmd.String("search"),
				Limit:  a.cfg.PageSize,
				Offset: cmd.Int("offset"),
			}
			if cmd.IsSet("limit") {
				params.Limit = cmd.Int("limit")
			}
			if params.Limit > gateway.MaxLimit {
				params.Limit = gateway.MaxLimit
			}
			log.Debugf("listing objects: %+v", params)

			list, err := reader.ListObjects(ctx, params)
			if err != nil {
				return fmt.Errorf("list objects: %w", err)
			}
			a.renderer.Objects(list)
			return nil
		},
	}
}

func (a *app) objectCommand() *cli.Command {
	return &cli.Command{
		Name:      "object",
		Usage:     "show a single object",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			reader, err := a.history(ctx)
			if err != nil {
				return err
			}

			obj, err := reader.GetObject(ctx, cmd.Args().Get(0))
			if err != nil {
				return fmt.Errorf("get object: %w", err)
			}
			a.renderer.Object(obj)
			return nil
		},
	}
}

func (a *app) typesCommand() *cli.Command {
	return &cli.Command{
		Name:  "types",
		Usage: "list the object types seen so far",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			reader, err := a.history(ctx)
			if err != nil {
				return err
			}

			types, err := reader.GetObjectTypes(ctx)
			if err != nil {
				return fmt.Errorf("get object types: %w", err)
			}
			a.renderer.Types(types)
			return nil
		},
	}
}

func (a *app) timelineCommand() *cli.Command {
	return &cli.Command{
		Name:      "timeline",
		Usage:     "list the stored versions of an object",
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			reader, err := a.history(ctx)
			if err != nil {
				return err
			}

			timeline, err := reader.GetObjectTimeline(ctx, cmd.Args().Get(0))
			if err != nil {
				return fmt.Errorf("get timeline: %w", err)
			}
			a.renderer.Timeline(timeline)
			return nil
		},
	}
}

func (a *app) changesCommand() *cli.Command {
	return &cli.Command{
		Name:      "changes",
		Usage:     "show the attribute changes of one version",
		ArgsUsage: "<id> <usn>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "sd", Usage: "fetch and show security descriptor diffs"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 2); err != nil {
				return err
			}
			usn, err := parseUSN(cmd.Args().Get(1))
			if err != nil {
				return err
			}
			reader, err := a.history(ctx)
			if err != nil {
				return err
			}

			changes, err := reader.GetVersionChanges(ctx, cmd.Args().Get(0), usn)
			if err != nil {
				return fmt.Errorf("get version changes: %w", err)
			}
			a.showChanges(ctx, changes, cmd.Bool("sd"))
			return nil
		},
	}
}

// showChanges renders changes, expanding security descriptors inline when sd is set.
func (a *app) showChanges(ctx context.Context, changes []diff.AttributeChange, sd bool) {
	if !sd {
		a.renderer.Changes(changes)
		return
	}
	if len(changes) == 0 {
		a.renderer.Changes(nil)
		return
	}

	for _, c := range changes {
		if !formatters.IsSecurityDescriptor(c.Attribute) {
			a.renderer.Change(c, false)
			continue
		}
		a.renderer.Change(c, true)
		resp, err := a.differ().DiffSecurityDescriptors(ctx,
			formatters.GetBase64Value(c.OldValue),
			formatters.GetBase64Value(c.NewValue),
		)
		if err != nil {
			log.WithError(err).WithField("attribute", c.Attribute).Warn("security descriptor diff failed")
			a.renderer.SDDiffFailed(err)
			continue
		}
		a.renderer.SDDiff(resp)
	}
}

func (a *app) sddiffCommand() *cli.Command {
	return &cli.Command{
		Name:      "sddiff",
		Usage:     "diff two base64 encoded security descriptors",
		ArgsUsage: "<old-base64> <new-base64>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 2); err != nil {
				return err
			}

			resp, err := a.differ().DiffSecurityDescriptors(ctx, cmd.Args().Get(0), cmd.Args().Get(1))
			if err != nil {
				return fmt.Errorf("diff security descriptors: %w", err)
			}
			a.renderer.SDDiff(resp)
			return nil
		},
	}
}

func (a *app) compareCommand() *cli.Command {
	return &cli.Command{
		Name:      "compare",
		Usage:     "diff the snapshots of two versions of an object",
		ArgsUsage: "<id> <usn-a> <usn-b>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "sd", Usage: "fetch and show security descriptor diffs"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 3); err != nil {
				return err
			}
			usnA, err := parseUSN(cmd.Args().Get(1))
			if err != nil {
				return err
			}
			usnB, err := parseUSN(cmd.Args().Get(2))
			if err != nil {
				return err
			}
			reader, err := a.history(ctx)
			if err != nil {
				return err
			}

			timeline, err := reader.GetObjectTimeline(ctx, cmd.Args().Get(0))
			if err != nil {
				return fmt.Errorf("get timeline: %w", err)
			}
			prev, err := snapshot(timeline, usnA)
			if err != nil {
				return err
			}
			curr, err := snapshot(timeline, usnB)
			if err != nil {
				return err
			}

			a.showChanges(ctx, diff.FindChanges(prev, curr), cmd.Bool("sd"))
			return nil
		},
	}
}

func snapshot(timeline []gateway.TimelineEntry, usn int64) (map[string]diff.Value, error) {
	entry, ok := gateway.FindVersion(timeline, usn)
	if !ok {
		return nil, fmt.Errorf("version %d not found in timeline", usn)
	}
	if len(entry.Snapshot) == 0 {
		return nil, fmt.Errorf("version %d has no stored snapshot", usn)
	}
	return entry.Attributes()
}

func (a *app) serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve the history API read-only",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "listen", Usage: "listen address (defaults to ADSPY_LISTEN)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			reader, err := a.history(ctx)
			if err != nil {
				return err
			}

			addr := a.cfg.Listen
			if cmd.IsSet("listen") {
				addr = cmd.String("listen")
			}
			return web.NewServer(reader, a.differ(), addr).Start(ctx)
		},
	}
}
