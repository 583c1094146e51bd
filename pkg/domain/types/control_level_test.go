package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskdeck/pkg/domain/types"
)

func TestControlLevel_Weight(t *testing.T) {
	tests := []struct {
		level types.ControlLevel
		want  float64
	}{
		{level: types.ControlLevelInexistent, want: 1.0},
		{level: types.ControlLevelWeak, want: 0.8},
		{level: types.ControlLevelModerate, want: 0.6},
		{level: types.ControlLevelSatisfactory, want: 0.4},
		{level: types.ControlLevelStrong, want: 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			got, err := tt.level.Weight()
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestControlLevel_WeightStrictlyDecreasing(t *testing.T) {
	prev := 1.1
	for _, level := range types.AllControlLevels() {
		w, err := level.Weight()
		gt.NoError(t, err).Required()
		gt.Bool(t, w > 0 && w <= 1).True()
		gt.Bool(t, w < prev).True()
		prev = w
	}
}

func TestControlLevel_UnknownWeight(t *testing.T) {
	_, err := types.ControlLevel("excellent").Weight()
	gt.Error(t, err).Is(types.ErrUnknownControlLevel)

	_, err = types.ControlLevel("").Weight()
	gt.Error(t, err).Is(types.ErrUnknownControlLevel)
}

func TestParseControlLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    types.ControlLevel
		wantErr bool
	}{
		{name: "inexistente", input: "INEXISTENTE", want: types.ControlLevelInexistent},
		{name: "fraco", input: "FRACO", want: types.ControlLevelWeak},
		{name: "mediano", input: "Mediano", want: types.ControlLevelModerate},
		{name: "satisfatorio with accent", input: "SATISFATÓRIO", want: types.ControlLevelSatisfactory},
		{name: "satisfatorio without accent", input: "satisfatorio", want: types.ControlLevelSatisfactory},
		{name: "forte with spaces", input: "  FORTE ", want: types.ControlLevelStrong},
		{name: "english", input: "moderate", want: types.ControlLevelModerate},
		{name: "unknown", input: "EXCELENTE", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := types.ParseControlLevel(tt.input)
			if tt.wantErr {
				gt.Error(t, err).Is(types.ErrUnknownControlLevel)
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestControlLevel_LabelRoundTrip(t *testing.T) {
	for _, level := range types.AllControlLevels() {
		parsed, err := types.ParseControlLevel(level.Label())
		gt.NoError(t, err).Required()
		gt.Value(t, parsed).Equal(level)
	}
}
