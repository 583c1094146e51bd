package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/riskdeck/pkg/domain/model"
	"github.com/secmon-lab/riskdeck/pkg/domain/types"
	"github.com/secmon-lab/riskdeck/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// LayoutFile is the TOML form of a workbook layout override
type LayoutFile struct {
	Integrated    *bool       `toml:"integrated"`
	NoPlanTokens  []string    `toml:"no_plan_tokens"`
	ErrorToken    *string     `toml:"error_token"`
	RiskMap       SheetLayout `toml:"risk_map"`
	ResponsePlan  SheetLayout `toml:"response_plan"`
	IndicatorPlan SheetLayout `toml:"indicator_plan"`
}

// SheetLayout overrides where a sheet is found. Zero values keep the default.
type SheetLayout struct {
	Sheet     string `toml:"sheet"`
	HeaderRow int    `toml:"header_row"`
}

// Validate checks the layout values
func (f *LayoutFile) Validate() error {
	for kind, s := range f.sheets() {
		if s.HeaderRow < 0 {
			return goerr.Wrap(ErrInvalidConfig, "header_row must be positive",
				goerr.V(SheetKindKey, kind), goerr.V("header_row", s.HeaderRow))
		}
	}
	for _, token := range f.NoPlanTokens {
		if token == "" {
			return goerr.Wrap(ErrInvalidConfig, "no_plan_tokens must not contain empty strings")
		}
	}
	return nil
}

func (f *LayoutFile) sheets() map[types.SheetKind]SheetLayout {
	return map[types.SheetKind]SheetLayout{
		types.SheetKindRiskMap:       f.RiskMap,
		types.SheetKindResponsePlan:  f.ResponsePlan,
		types.SheetKindIndicatorPlan: f.IndicatorPlan,
	}
}

// Registry applies the overrides to the default schema registry
func (f *LayoutFile) Registry() (*model.SchemaRegistry, error) {
	overrides := f.sheets()
	registry := model.NewSchemaRegistry()
	for _, schema := range model.DefaultSchemaRegistry().List() {
		o := overrides[schema.Kind]
		if o.Sheet != "" {
			schema.SheetName = o.Sheet
		}
		if o.HeaderRow > 0 {
			schema.HeaderRow = o.HeaderRow
		}
		if err := registry.Register(schema); err != nil {
			return nil, goerr.Wrap(err, "invalid sheet layout", goerr.V(SheetKindKey, schema.Kind))
		}
	}
	return registry, nil
}

// LoadLayout reads a workbook layout from a TOML file
func LoadLayout(path string) (*LayoutFile, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "layout file not found", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read layout file", goerr.V(ConfigPathKey, path))
	}

	var layout LayoutFile
	if err := toml.Unmarshal(data, &layout); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML layout",
			goerr.V(ConfigPathKey, path), goerr.V("cause", err.Error()))
	}

	if err := layout.Validate(); err != nil {
		return nil, goerr.Wrap(err, "layout validation failed", goerr.V(ConfigPathKey, path))
	}

	return &layout, nil
}

// Layout holds CLI flags for the workbook layout
type Layout struct {
	path         string
	integrated   bool
	noPlanTokens []string
}

func (x *Layout) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "layout",
			Usage:       "Path to a TOML file overriding sheet names, header rows and tokens",
			Category:    "Workbook",
			Sources:     cli.EnvVars("RISKDECK_LAYOUT"),
			Destination: &x.path,
		},
		&cli.BoolFlag{
			Name:        "integrated",
			Usage:       "Require and load the indicator plan sheet",
			Category:    "Workbook",
			Sources:     cli.EnvVars("RISKDECK_INTEGRATED"),
			Destination: &x.integrated,
		},
		&cli.StringSliceFlag{
			Name:        "no-plan-token",
			Usage:       "Response plan value meaning the risk has no plan (repeatable)",
			Category:    "Workbook",
			Sources:     cli.EnvVars("RISKDECK_NO_PLAN_TOKENS"),
			Destination: &x.noPlanTokens,
		},
	}
}

func (x Layout) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", x.path),
		slog.Bool("integrated", x.integrated),
		slog.Any("no_plan_tokens", x.noPlanTokens),
	)
}

// Configure returns the use case options of the layout. Flags take
// precedence over the layout file.
func (x *Layout) Configure() ([]usecase.Option, error) {
	layout := &LayoutFile{}
	if x.path != "" {
		loaded, err := LoadLayout(x.path)
		if err != nil {
			return nil, err
		}
		layout = loaded
	}

	registry, err := layout.Registry()
	if err != nil {
		return nil, err
	}

	var ingestOpts []usecase.IngestOption
	integrated := x.integrated
	if !integrated && layout.Integrated != nil {
		integrated = *layout.Integrated
	}
	ingestOpts = append(ingestOpts, usecase.WithIntegrated(integrated))

	switch {
	case len(x.noPlanTokens) > 0:
		ingestOpts = append(ingestOpts, usecase.WithNoPlanTokens(x.noPlanTokens))
	case len(layout.NoPlanTokens) > 0:
		ingestOpts = append(ingestOpts, usecase.WithNoPlanTokens(layout.NoPlanTokens))
	}
	if layout.ErrorToken != nil {
		ingestOpts = append(ingestOpts, usecase.WithErrorToken(*layout.ErrorToken))
	}

	return []usecase.Option{
		usecase.WithSchemaRegistry(registry),
		usecase.WithIngestOptions(ingestOpts...),
	}, nil
}
