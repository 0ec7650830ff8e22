package commands

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/writegate/internal/gateway"
	"github.com/colonyops/writegate/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *gateway.App

	// flags
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *gateway.App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	jsonFlag := &cli.BoolFlag{
		Name:        "json",
		Usage:       "output as JSON lines",
		Destination: &cmd.jsonOutput,
	}

	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "Inspect the ledger",
		UsageText: "writegate ls [revisions|grants|roles|channels] [--json]",
		Commands: []*cli.Command{
			{
				Name:   "revisions",
				Usage:  "List accepted document revisions",
				Flags:  []cli.Flag{jsonFlag},
				Action: cmd.runRevisions,
			},
			{
				Name:   "grants",
				Usage:  "List channel grants accumulated from accepted writes",
				Flags:  []cli.Flag{jsonFlag},
				Action: cmd.runGrants,
			},
			{
				Name:   "roles",
				Usage:  "List role assignments accumulated from accepted writes",
				Flags:  []cli.Flag{jsonFlag},
				Action: cmd.runRoles,
			},
			{
				Name:   "channels",
				Usage:  "List channel memberships of current revisions",
				Flags:  []cli.Flag{jsonFlag},
				Action: cmd.runChannels,
			},
		},
	})

	return app
}

func (cmd *LsCmd) runRevisions(ctx context.Context, c *cli.Command) error {
	revs, err := cmd.app.Ledger.Revisions(ctx)
	if err != nil {
		return fmt.Errorf("list revisions: %w", err)
	}

	if len(revs) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No revisions found\n")
		}
		return nil
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, r := range revs {
			row := revisionInfo{
				ID:        r.ID,
				Rev:       r.Rev,
				Type:      r.Type,
				Deleted:   r.Deleted,
				UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
			}
			if err := iojson.WriteLine(out, row); err != nil {
				return fmt.Errorf("encode revision: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tREV\tTYPE\tDELETED\tUPDATED")
	for _, r := range revs {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%t\t%s\n", r.ID, r.Rev, r.Type, r.Deleted, r.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func (cmd *LsCmd) runGrants(ctx context.Context, c *cli.Command) error {
	grants, err := cmd.app.Ledger.ChannelGrants(ctx)
	if err != nil {
		return fmt.Errorf("list channel grants: %w", err)
	}

	if len(grants) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No channel grants found\n")
		}
		return nil
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, g := range grants {
			row := grantRowInfo{User: g.User, Channel: g.Channel, GrantedBy: g.GrantedBy}
			if err := iojson.WriteLine(out, row); err != nil {
				return fmt.Errorf("encode grant: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "USER\tCHANNEL\tGRANTED BY")
	for _, g := range grants {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", g.User, g.Channel, g.GrantedBy)
	}
	return w.Flush()
}

func (cmd *LsCmd) runRoles(ctx context.Context, c *cli.Command) error {
	roles, err := cmd.app.Ledger.RoleGrants(ctx)
	if err != nil {
		return fmt.Errorf("list role grants: %w", err)
	}

	if len(roles) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No role grants found\n")
		}
		return nil
	}

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, r := range roles {
			row := roleRowInfo{User: r.User, Role: r.Role, GrantedBy: r.GrantedBy}
			if err := iojson.WriteLine(out, row); err != nil {
				return fmt.Errorf("encode role: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "USER\tROLE\tGRANTED BY")
	for _, r := range roles {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.User, r.Role, r.GrantedBy)
	}
	return w.Flush()
}

func (cmd *LsCmd) runChannels(ctx context.Context, c *cli.Command) error {
	byChannel, err := cmd.app.Ledger.AllDocChannels(ctx)
	if err != nil {
		return fmt.Errorf("list channels: %w", err)
	}

	if len(byChannel) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No channels found\n")
		}
		return nil
	}

	names := make([]string, 0, len(byChannel))
	for ch := range byChannel {
		names = append(names, ch)
	}
	slices.Sort(names)

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, ch := range names {
			docs := byChannel[ch]
			slices.Sort(docs)
			row := channelInfo{Channel: ch, Docs: docs}
			if err := iojson.WriteLine(out, row); err != nil {
				return fmt.Errorf("encode channel: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CHANNEL\tDOCS")
	for _, ch := range names {
		docs := byChannel[ch]
		slices.Sort(docs)
		_, _ = fmt.Fprintf(w, "%s\t%s\n", ch, strings.Join(docs, ", "))
	}
	return w.Flush()
}

// JSON row formats for writegate ls --json.
type revisionInfo struct {
	ID        string `json:"id"`
	Rev       int64  `json:"rev"`
	Type      string `json:"type"`
	Deleted   bool   `json:"deleted"`
	UpdatedAt string `json:"updated_at"`
}

type grantRowInfo struct {
	User      string `json:"user"`
	Channel   string `json:"channel"`
	GrantedBy string `json:"granted_by"`
}

type roleRowInfo struct {
	User      string `json:"user"`
	Role      string `json:"role"`
	GrantedBy string `json:"granted_by"`
}

type channelInfo struct {
	Channel string   `json:"channel"`
	Docs    []string `json:"docs"`
}
