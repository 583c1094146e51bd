package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskdeck/pkg/cli/config"
	"github.com/secmon-lab/riskdeck/pkg/domain/model"
	"github.com/secmon-lab/riskdeck/pkg/repository/memory"
	"github.com/secmon-lab/riskdeck/pkg/service/workbook"
	"github.com/secmon-lab/riskdeck/pkg/usecase"
	"github.com/secmon-lab/riskdeck/pkg/utils/logging"
	"github.com/secmon-lab/riskdeck/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// ErrFileRequired is returned when a command is run without a workbook path
var ErrFileRequired = goerr.New("workbook file is required")

func cmdValidate() *cli.Command {
	var layoutCfg config.Layout
	var watch bool

	flags := []cli.Flag{
		&cli.BoolFlag{
			Name:        "watch",
			Aliases:     []string{"w"},
			Usage:       "Validate again whenever the file changes",
			Sources:     cli.EnvVars("RISKDECK_WATCH"),
			Destination: &watch,
		},
	}
	flags = append(flags, layoutCfg.Flags()...)

	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Validate a risk register workbook and report findings",
		ArgsUsage: "FILE",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				return ErrFileRequired
			}

			ucOpts, err := layoutCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load workbook layout")
			}
			uc := usecase.New(memory.New(), ucOpts...)
			w := c.Root().Writer

			if !watch {
				return validateFile(ctx, w, uc, path)
			}

			run := func() {
				if err := validateFile(ctx, w, uc, path); err != nil {
					logging.Default().Debug("validation failed", "error", err)
				}
			}
			run()
			return watchFile(ctx, path, run)
		},
	}
}

// validateFile loads the workbook at path and prints the result to w
func validateFile(ctx context.Context, w io.Writer, uc *usecase.UseCases, path string) error {
	wb, err := workbook.OpenFile(ctx, path)
	if err != nil {
		renderFailure(w, path, err)
		return err
	}
	defer safe.Close(ctx, wb)

	ts, err := uc.Ingest.Load(ctx, wb)
	if err != nil {
		renderFailure(w, path, err)
		return err
	}

	renderReport(w, ts, usecase.NewPortfolio(ts).Audit())
	return nil
}

var (
	okColor      = color.New(color.FgGreen, color.Bold)
	failColor    = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow)
	subtleColor  = color.New(color.Faint)
	headingColor = color.New(color.Bold)
)

func renderFailure(w io.Writer, path string, err error) {
	msg := err.Error()
	var ie *model.IngestionError
	if errors.As(err, &ie) {
		msg = ie.Error()
	}
	failColor.Fprintf(w, "✘ %s\n", path)
	fmt.Fprintf(w, "  %s\n", msg)
}

func renderReport(w io.Writer, ts *model.TableSet, findings []model.Finding) {
	okColor.Fprintf(w, "✔ %s\n", ts.Source())

	for _, kind := range []struct {
		kind  string
		count int
		ok    bool
	}{
		{"risk map", len(ts.Risks()), true},
		{"response plan", len(ts.Plans()), true},
		{"indicator plan", len(ts.Indicators()), ts.Integrated()},
	} {
		if !kind.ok {
			subtleColor.Fprintf(w, "  %-16s not loaded\n", kind.kind)
			continue
		}
		fmt.Fprintf(w, "  %-16s %d rows\n", kind.kind, kind.count)
	}

	if len(findings) == 0 {
		okColor.Fprintln(w, "  no findings")
		return
	}

	headingColor.Fprintf(w, "  %d finding(s)\n", len(findings))
	for _, f := range findings {
		warnColor.Fprintf(w, "  %s row %d [%s]", f.Sheet, f.Row, f.Code)
		fmt.Fprintf(w, " %s: %s\n", f.RiskEvent, f.Message)
	}
}
