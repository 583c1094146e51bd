package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskdeck/pkg/domain/types"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		level float64
		want  types.Classification
	}{
		{name: "zero", level: 0, want: types.ClassificationAcceptable},
		{name: "one", level: 1, want: types.ClassificationAcceptable},
		{name: "acceptable upper bound", level: 2, want: types.ClassificationAcceptable},
		{name: "just above 2", level: 2.01, want: types.ClassificationManageable},
		{name: "residual 4.8", level: 4.8, want: types.ClassificationManageable},
		{name: "manageable upper bound", level: 6, want: types.ClassificationManageable},
		{name: "just above 6", level: 6.01, want: types.ClassificationUndesirable},
		{name: "undesirable upper bound", level: 9, want: types.ClassificationUndesirable},
		{name: "just above 9", level: 9.01, want: types.ClassificationUnacceptable},
		{name: "max inherent", level: 16, want: types.ClassificationUnacceptable},
		{name: "negative", level: -1, want: types.ClassificationAcceptable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, types.Classify(tt.level)).Equal(tt.want)
		})
	}
}

func TestClassify_Monotonic(t *testing.T) {
	prev := types.Classify(-10)
	for level := -10.0; level <= 20.0; level += 0.05 {
		got := types.Classify(level)
		gt.Bool(t, got.IsValid()).True()
		gt.Bool(t, got.Severity() >= prev.Severity()).True()
		prev = got
	}
}

func TestParseClassification(t *testing.T) {
	tests := []struct {
		input   string
		want    types.Classification
		wantErr bool
	}{
		{input: "Aceitável", want: types.ClassificationAcceptable},
		{input: "Gerenciável", want: types.ClassificationManageable},
		{input: " Indesejável ", want: types.ClassificationUndesirable},
		{input: "INACEITÁVEL", want: types.ClassificationUnacceptable},
		{input: "Inaceitavel", want: types.ClassificationUnacceptable},
		{input: "manageable", want: types.ClassificationManageable},
		{input: "Critical", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := types.ParseClassification(tt.input)
			if tt.wantErr {
				gt.Error(t, err).Is(types.ErrUnknownClassification)
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestAllClassifications(t *testing.T) {
	all := types.AllClassifications()
	gt.A(t, all).Length(4)
	for i, c := range all {
		gt.Value(t, c.Severity()).Equal(i + 1)
		gt.String(t, c.Label()).NotEqual("")
	}
	gt.Bool(t, types.Classification("critical").IsValid()).False()
}
