package commands

import (
	"context"
	"errors"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/writegate/internal/core/config"
	"github.com/colonyops/writegate/internal/printer"
	"github.com/colonyops/writegate/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "writegate config validate [options]",
				Description: "Validates the configuration file, checking user entries, role values, and channel pattern syntax.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	errs := fieldErrors(cmd.flags.Config.ValidateDeep(cmd.flags.ConfigPath))
	warnings := cmd.flags.Config.Warnings()

	if cmd.format == "json" {
		return cmd.outputJSON(errs, warnings)
	}

	return cmd.outputText(printer.Ctx(ctx), errs, warnings)
}

// fieldErrors flattens a criterio validation error into its field entries.
func fieldErrors(err error) []fieldError {
	if err == nil {
		return nil
	}

	var fe criterio.FieldErrors
	if errors.As(err, &fe) {
		out := make([]fieldError, 0, len(fe))
		for _, e := range fe {
			out = append(out, fieldError{Field: e.Field, Message: e.Err.Error()})
		}
		return out
	}

	return []fieldError{{Field: "config", Message: err.Error()}}
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (cmd *ConfigValidateCmd) outputJSON(errs []fieldError, warnings []config.ValidationWarning) error {
	out := struct {
		Valid    bool                       `json:"valid"`
		Errors   []fieldError               `json:"errors,omitempty"`
		Warnings []config.ValidationWarning `json:"warnings,omitempty"`
	}{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Warnings: warnings,
	}

	if err := iojson.Write(out); err != nil {
		return err
	}
	if len(errs) > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func (cmd *ConfigValidateCmd) outputText(p *printer.Printer, errs []fieldError, warnings []config.ValidationWarning) error {
	for _, warn := range warnings {
		p.Infof("%s: %s", warn.Category, warn.Message)
		if warn.Item != "" {
			p.Printf("  Item: %s", warn.Item)
		}
	}

	for _, e := range errs {
		p.Errorf("%s: %s", e.Field, e.Message)
	}

	p.Printf("")
	if len(errs) == 0 {
		p.Successf("Configuration is valid")
		return nil
	}

	p.Errorf("%d error(s) found", len(errs))
	return cli.Exit("", 1)
}
