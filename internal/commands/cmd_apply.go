package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/writegate/internal/core/policy"
	"github.com/colonyops/writegate/internal/core/validate"
	"github.com/colonyops/writegate/internal/gateway"
	"github.com/colonyops/writegate/internal/printer"
	"github.com/colonyops/writegate/pkg/iojson"
)

type ApplyCmd struct {
	flags *Flags
	app   *gateway.App
	docFR *iojson.FileReader[policy.Document]

	// flags
	as     string
	format string
}

// NewApplyCmd creates a new apply command.
func NewApplyCmd(flags *Flags, app *gateway.App) *ApplyCmd {
	return &ApplyCmd{
		flags: flags,
		app:   app,
		docFR: iojson.NewFileReader[policy.Document]("doc", []string{"d"}, "path to the proposed document JSON (reads from stdin if not provided)"),
	}
}

// Register adds the apply command to the application.
func (cmd *ApplyCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "apply",
		Usage: "Propose a write against the ledger",
		UsageText: `writegate apply --as USER [options]

  writegate apply --as alice --doc list.json
  echo '{"_id":"alice:groceries","type":"task-list","name":"Groceries","owner":"alice"}' | writegate apply --as alice`,
		Description: `Evaluates a proposed write for the named user and, on acceptance, records
the new revision in the ledger together with the channels, grants, and role
assignments the policy declared.

The prior revision and the user's accumulated grants come from the ledger;
the config file contributes static roles and channel patterns.

Exits 1 when the write is rejected, printing the rejection reason verbatim.`,
		Flags: []cli.Flag{
			cmd.docFR.Flag(),
			&cli.StringFlag{
				Name:        "as",
				Usage:       "username performing the write",
				Required:    true,
				Destination: &cmd.as,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ApplyCmd) run(ctx context.Context, c *cli.Command) error {
	if err := validate.OutputFormat(cmd.format); err != nil {
		return err
	}

	doc, err := cmd.docFR.Read()
	if err != nil {
		return err
	}

	p := printer.Ctx(ctx)

	res, err := cmd.app.Service.Propose(ctx, cmd.as, &doc)
	switch {
	case policy.IsRejection(err), errors.Is(err, gateway.ErrDocumentDeleted):
		if cmd.format == "json" {
			op, _ := policy.Classify(&doc, nil)
			if werr := iojson.Write(buildEvalOutput(op, nil, err)); werr != nil {
				return werr
			}
		} else {
			p.Errorf("%s", err.Error())
		}
		return cli.Exit("", 1)
	case err != nil:
		return err
	}

	rev, err := cmd.app.Ledger.Revision(ctx, doc.ID)
	if err != nil {
		return fmt.Errorf("load accepted revision: %w", err)
	}

	if cmd.format == "json" {
		out := struct {
			evalOutput
			Rev int64 `json:"rev"`
		}{buildEvalOutput(appliedOp(rev.Rev, rev.Deleted), res, nil), rev.Rev}
		return iojson.Write(out)
	}

	p.Successf("accepted %s (rev %d)", doc.ID, rev.Rev)
	for _, ch := range res.Channels {
		p.Printf("  channel  %s", ch)
	}
	for _, g := range res.Grants {
		p.Printf("  grant    %s -> %s", g.User, g.Channel)
	}
	for _, r := range res.Roles {
		p.Printf("  role     %s -> %s", r.User, r.Role)
	}
	return nil
}

// appliedOp reconstructs the operation kind from the recorded revision.
func appliedOp(rev int64, deleted bool) policy.Op {
	switch {
	case deleted:
		return policy.OpDelete
	case rev == 1:
		return policy.OpCreate
	default:
		return policy.OpUpdate
	}
}
