package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/writegate/internal/core/policy"
	"github.com/colonyops/writegate/internal/core/validate"
	"github.com/colonyops/writegate/internal/gateway"
	"github.com/colonyops/writegate/internal/printer"
	"github.com/colonyops/writegate/pkg/iojson"
)

type BatchCmd struct {
	flags *Flags
	app   *gateway.App

	// flags
	format string
}

// NewBatchCmd creates a new batch command.
func NewBatchCmd(flags *Flags, app *gateway.App) *BatchCmd {
	return &BatchCmd{flags: flags, app: app}
}

// Register adds the batch command to the application.
func (cmd *BatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "batch",
		Usage:     "Replay a YAML scenario through the ledger",
		UsageText: "writegate batch [options] SCENARIO.yaml",
		Description: `Replays an ordered list of write proposals and checks each outcome against
an expectation. Useful as a policy regression harness: point --data-dir at a
scratch directory to replay against a fresh ledger.

Scenario schema:
  name: share a list with bob
  steps:
    - as: alice
      doc: {_id: "alice:groceries", type: task-list, name: Groceries, owner: alice}
    - as: bob
      doc: {_id: "t-1", type: task, task: buy milk, taskList: {id: "alice:groceries", owner: alice}}
      expect: reject
      reason-contains: read access

Fields per step:
  as              - Required. Username performing the write.
  doc             - Required. The proposed document.
  expect          - Optional. "accept" (default) or "reject".
  reason-contains - Optional. Substring the rejection reason must contain.

Exits 1 when any step's outcome does not match its expectation.`,
		Flags: []cli.Flag{
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

func (cmd *BatchCmd) run(ctx context.Context, c *cli.Command) error {
	if err := validate.OutputFormat(cmd.format); err != nil {
		return err
	}
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one scenario file, got %d arguments", c.Args().Len())
	}

	scenario, err := readScenario(c.Args().First())
	if err != nil {
		return err
	}

	log.Info().Str("scenario", scenario.Name).Int("steps", len(scenario.Steps)).Msg("starting scenario replay")

	output := ScenarioOutput{Scenario: scenario.Name}
	for i, step := range scenario.Steps {
		result := cmd.runStep(ctx, i, step)
		output.Results = append(output.Results, result)
		if !result.Pass {
			output.Failures++
		}
	}

	if cmd.format == "json" {
		if err := iojson.Write(output); err != nil {
			return err
		}
		if output.Failures > 0 {
			return cli.Exit("", 1)
		}
		return nil
	}

	return cmd.outputText(printer.Ctx(ctx), output)
}

func (cmd *BatchCmd) runStep(ctx context.Context, i int, step ScenarioStep) StepResult {
	result := StepResult{
		Step:   i + 1,
		As:     step.As,
		DocID:  step.Doc.ID,
		Expect: step.expect(),
	}

	_, err := cmd.app.Service.Propose(ctx, step.As, step.Doc)
	switch {
	case err == nil:
		result.Outcome = ExpectAccept
	case policy.IsRejection(err) || errors.Is(err, gateway.ErrDocumentDeleted):
		result.Outcome = ExpectReject
		result.Reason = err.Error()
	default:
		result.Outcome = "error"
		result.Reason = err.Error()
		return result
	}

	result.Pass = result.Outcome == result.Expect
	if result.Pass && step.ReasonContains != "" {
		result.Pass = strings.Contains(result.Reason, step.ReasonContains)
	}
	return result
}

func (cmd *BatchCmd) outputText(p *printer.Printer, output ScenarioOutput) error {
	for _, r := range output.Results {
		label := fmt.Sprintf("step %d: %s writes %s", r.Step, r.As, r.DocID)
		if r.Pass {
			p.Successf("%s (%s)", label, r.Outcome)
			continue
		}
		p.Errorf("%s: expected %s, got %s", label, r.Expect, r.Outcome)
		if r.Reason != "" {
			p.Printf("  reason: %s", r.Reason)
		}
	}

	p.Printf("")
	if output.Failures == 0 {
		p.Successf("%d step(s) passed", len(output.Results))
		return nil
	}

	p.Errorf("%d of %d step(s) failed", output.Failures, len(output.Results))
	return cli.Exit("", 1)
}

const (
	ExpectAccept = "accept"
	ExpectReject = "reject"
)

// Scenario is an ordered list of write proposals with expected outcomes.
type Scenario struct {
	Name  string         `yaml:"name"`
	Steps []ScenarioStep `yaml:"steps"`
}

// ScenarioStep defines a single proposal and its expectation.
type ScenarioStep struct {
	As             string           `yaml:"as"`
	Doc            *policy.Document `yaml:"doc"`
	Expect         string           `yaml:"expect"`
	ReasonContains string           `yaml:"reason-contains"`
}

func (s ScenarioStep) expect() string {
	if s.Expect == "" {
		return ExpectAccept
	}
	return s.Expect
}

// Validate checks the scenario for structural errors using criterio.
func (s Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return criterio.NewFieldErrors("steps", fmt.Errorf("list is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	for i, step := range s.Steps {
		field := fmt.Sprintf("steps[%d]", i)

		if err := validate.Username(step.As); err != nil {
			errs = errs.Append(field+".as", err)
		}
		if step.Doc == nil {
			errs = errs.Append(field+".doc", fmt.Errorf("document is required"))
		} else if step.Doc.ID == "" {
			errs = errs.Append(field+".doc._id", fmt.Errorf("document id is required"))
		}
		if step.Expect != "" && step.Expect != ExpectAccept && step.Expect != ExpectReject {
			errs = errs.Append(field+".expect", fmt.Errorf("must be %q or %q, got %q", ExpectAccept, ExpectReject, step.Expect))
		}
		if step.ReasonContains != "" && step.expect() != ExpectReject {
			errs = errs.Append(field+".reason-contains", fmt.Errorf("only meaningful with expect: reject"))
		}
	}

	return errs.ToError()
}

func readScenario(path string) (Scenario, error) {
	var scenario Scenario

	data, err := os.ReadFile(path)
	if err != nil {
		return scenario, fmt.Errorf("read scenario: %w", err)
	}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return scenario, fmt.Errorf("parse scenario: %w", err)
	}
	if err := scenario.Validate(); err != nil {
		return scenario, fmt.Errorf("invalid scenario: %w", err)
	}

	return scenario, nil
}

// StepResult is the outcome of one replayed step.
type StepResult struct {
	Step    int    `json:"step"`
	As      string `json:"as"`
	DocID   string `json:"doc_id"`
	Expect  string `json:"expect"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
	Pass    bool   `json:"pass"`
}

// ScenarioOutput is the JSON output schema.
type ScenarioOutput struct {
	Scenario string       `json:"scenario,omitempty"`
	Results  []StepResult `json:"results"`
	Failures int          `json:"failures"`
}
