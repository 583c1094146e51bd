package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskdeck/pkg/cli/config"
	"github.com/secmon-lab/riskdeck/pkg/domain/model"
	"github.com/secmon-lab/riskdeck/pkg/domain/types"
	"github.com/secmon-lab/riskdeck/pkg/repository/memory"
	"github.com/secmon-lab/riskdeck/pkg/service/workbook"
	"github.com/secmon-lab/riskdeck/pkg/usecase"
	"github.com/secmon-lab/riskdeck/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdSimulate() *cli.Command {
	var layoutCfg config.Layout
	var event string
	var control string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "event",
			Aliases:     []string{"e"},
			Usage:       "Risk event to simulate",
			Required:    true,
			Destination: &event,
		},
		&cli.StringFlag{
			Name:        "control",
			Aliases:     []string{"c"},
			Usage:       "Control level (INEXISTENTE, FRACO, MEDIANO, SATISFATÓRIO, FORTE); all levels when omitted",
			Destination: &control,
		},
	}
	flags = append(flags, layoutCfg.Flags()...)

	return &cli.Command{
		Name:      "simulate",
		Usage:     "Show the residual risk of an event under other control levels",
		ArgsUsage: "FILE",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			path := c.Args().First()
			if path == "" {
				return ErrFileRequired
			}

			var level types.ControlLevel
			if control != "" {
				l, err := types.ParseControlLevel(control)
				if err != nil {
					return err
				}
				level = l
			}

			ucOpts, err := layoutCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load workbook layout")
			}
			uc := usecase.New(memory.New(), ucOpts...)

			wb, err := workbook.OpenFile(ctx, path)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, wb)

			ts, err := uc.Ingest.Load(ctx, wb)
			if err != nil {
				return err
			}

			sims, err := usecase.NewPortfolio(ts).Simulate(event, level)
			if err != nil {
				return err
			}

			renderSimulations(c.Root().Writer, sims)
			return nil
		},
	}
}

func renderSimulations(w io.Writer, sims []model.RiskSimulation) {
	if len(sims) == 0 {
		return
	}
	first := sims[0]
	headingColor.Fprintf(w, "%s / %s\n", first.StrategicAction, first.RiskEvent)
	fmt.Fprintf(w, "  inherent  %-8s %s\n", model.Some(first.InherentLevel), first.InherentClassification.Label())
	fmt.Fprintf(w, "  original  %-8s %s (%s)\n", first.OriginalResidual, first.OriginalClassification.Label(), first.OriginalControl.Label())

	for _, s := range sims {
		c := classificationColor(s.Simulated.ResidualClassification)
		fmt.Fprintf(w, "  %-13s ", s.Simulated.Control.Label())
		c.Fprintf(w, "%-8s %-12s", model.Some(s.Simulated.ResidualLevel), s.Simulated.ResidualClassification.Label())
		fmt.Fprintf(w, " delta %s\n", s.Delta)
	}
}

func classificationColor(c types.Classification) *color.Color {
	switch c {
	case types.ClassificationAcceptable:
		return okColor
	case types.ClassificationManageable:
		return subtleColor
	case types.ClassificationUndesirable:
		return warnColor
	default:
		return failColor
	}
}
