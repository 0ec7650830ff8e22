package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/writegate/internal/core/policy"
	"github.com/colonyops/writegate/internal/core/validate"
	"github.com/colonyops/writegate/internal/gateway"
	"github.com/colonyops/writegate/internal/printer"
	"github.com/colonyops/writegate/pkg/iojson"
)

type CheckCmd struct {
	flags *Flags
	docFR *iojson.FileReader[policy.Document]

	// flags
	as       string
	oldPath  string
	roles    []string
	channels []string
	format   string
}

// NewCheckCmd creates a new check command.
func NewCheckCmd(flags *Flags) *CheckCmd {
	return &CheckCmd{
		flags: flags,
		docFR: iojson.NewFileReader[policy.Document]("doc", []string{"d"}, "path to the proposed document JSON (reads from stdin if not provided)"),
	}
}

// Register adds the check command to the application.
func (cmd *CheckCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "check",
		Usage: "Dry-run a proposed write against the policy",
		UsageText: `writegate check --as USER [options]

Check a create:
  writegate check --as alice --doc list.json

Check an update:
  writegate check --as alice --doc list.json --old list.v1.json

Describe the principal explicitly:
  writegate check --as mia --role moderator --doc tombstone.json --old list.json`,
		Description: `Evaluates a proposed write with an explicitly described principal.

Nothing is read from or written to the ledger: the prior revision comes from
--old (absent means create) and the principal's roles and channels come only
from the --role and --channel flags plus the config entry for --as.

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
				Name:        "old",
				Usage:       "path to the prior revision JSON (omit for a create)",
				Destination: &cmd.oldPath,
			},
			&cli.StringSliceFlag{
				Name:        "role",
				Usage:       "role held by the principal (repeatable)",
				Destination: &cmd.roles,
			},
			&cli.StringSliceFlag{
				Name:        "channel",
				Usage:       "channel or glob pattern readable by the principal (repeatable)",
				Destination: &cmd.channels,
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

func (cmd *CheckCmd) run(ctx context.Context, c *cli.Command) error {
	if err := validate.OutputFormat(cmd.format); err != nil {
		return err
	}

	doc, err := cmd.docFR.Read()
	if err != nil {
		return err
	}

	var oldDoc *policy.Document
	if cmd.oldPath != "" {
		data, err := os.ReadFile(cmd.oldPath)
		if err != nil {
			return fmt.Errorf("read prior revision: %w", err)
		}
		oldDoc, err = policy.ParseDocument(data)
		if err != nil {
			return fmt.Errorf("parse prior revision: %w", err)
		}
	}

	engine := policy.NewEngine(log.With().Str("cmp", "policy").Logger())

	res, err := engine.Evaluate(cmd.principal(), &doc, oldDoc)
	op, _ := policy.Classify(&doc, oldDoc)

	if cmd.format == "json" {
		return cmd.outputJSON(op, res, err)
	}
	return cmd.outputText(printer.Ctx(ctx), op, res, err)
}

// principal describes the check's actor: the --role and --channel flags
// layered over the config entry for --as. Channels go through the same glob
// matching the ledger-backed resolver applies to config patterns, so check
// and apply read one config the same way. The grant ledger is never
// consulted.
func (cmd *CheckCmd) principal() policy.Principal {
	entry := cmd.flags.Config.User(cmd.as)

	patterns := make([]string, 0, len(entry.Channels)+len(cmd.channels))
	patterns = append(patterns, entry.Channels...)
	patterns = append(patterns, cmd.channels...)

	return gateway.NewPrincipal(cmd.as, append(append([]string{}, entry.Roles...), cmd.roles...), nil, patterns)
}

type evalOutput struct {
	Accepted bool        `json:"accepted"`
	Op       string      `json:"op"`
	Reason   string      `json:"reason,omitempty"`
	Channels []string    `json:"channels,omitempty"`
	Grants   []grantInfo `json:"grants,omitempty"`
	Roles    []roleInfo  `json:"roles,omitempty"`
}

type grantInfo struct {
	User    string `json:"user"`
	Channel string `json:"channel"`
}

type roleInfo struct {
	User string `json:"user"`
	Role string `json:"role"`
}

func buildEvalOutput(op policy.Op, res *policy.Result, evalErr error) evalOutput {
	out := evalOutput{
		Accepted: evalErr == nil,
		Op:       op.String(),
	}
	if evalErr != nil {
		out.Reason = evalErr.Error()
		return out
	}

	out.Channels = res.Channels
	for _, g := range res.Grants {
		out.Grants = append(out.Grants, grantInfo{User: g.User, Channel: g.Channel})
	}
	for _, r := range res.Roles {
		out.Roles = append(out.Roles, roleInfo{User: r.User, Role: r.Role})
	}
	return out
}

func (cmd *CheckCmd) outputJSON(op policy.Op, res *policy.Result, evalErr error) error {
	if err := iojson.Write(buildEvalOutput(op, res, evalErr)); err != nil {
		return err
	}
	if evalErr != nil {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *CheckCmd) outputText(p *printer.Printer, op policy.Op, res *policy.Result, evalErr error) error {
	if evalErr != nil {
		p.Errorf("%s", evalErr.Error())
		return cli.Exit("", 1)
	}

	p.Successf("accepted (%s)", op)
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
