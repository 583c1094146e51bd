package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ControlLevel is the assessed strength of the controls in place for a risk
type ControlLevel string

const (
	ControlLevelInexistent   ControlLevel = "inexistent"
	ControlLevelWeak         ControlLevel = "weak"
	ControlLevelModerate     ControlLevel = "moderate"
	ControlLevelSatisfactory ControlLevel = "satisfactory"
	ControlLevelStrong       ControlLevel = "strong"
)

// ErrUnknownControlLevel is returned for tags outside the five recognized levels
var ErrUnknownControlLevel = goerr.New("unknown control level")

var controlWeights = map[ControlLevel]float64{
	ControlLevelInexistent:   1.0,
	ControlLevelWeak:         0.8,
	ControlLevelModerate:     0.6,
	ControlLevelSatisfactory: 0.4,
	ControlLevelStrong:       0.2,
}

// AllControlLevels returns all control levels ordered from weakest to strongest
func AllControlLevels() []ControlLevel {
	return []ControlLevel{
		ControlLevelInexistent,
		ControlLevelWeak,
		ControlLevelModerate,
		ControlLevelSatisfactory,
		ControlLevelStrong,
	}
}

// IsValid checks if the control level is one of the five recognized levels
func (l ControlLevel) IsValid() bool {
	_, ok := controlWeights[l]
	return ok
}

// Weight returns the residual multiplier of the control level.
// Weights decrease as strength increases; unknown levels never default.
func (l ControlLevel) Weight() (float64, error) {
	w, ok := controlWeights[l]
	if !ok {
		return 0, goerr.Wrap(ErrUnknownControlLevel, "no weight for control level", goerr.V("control_level", string(l)))
	}
	return w, nil
}

// String returns the string representation of the control level
func (l ControlLevel) String() string {
	return string(l)
}

// Label returns the tag used in register workbooks
func (l ControlLevel) Label() string {
	switch l {
	case ControlLevelInexistent:
		return "INEXISTENTE"
	case ControlLevelWeak:
		return "FRACO"
	case ControlLevelModerate:
		return "MEDIANO"
	case ControlLevelSatisfactory:
		return "SATISFATÓRIO"
	case ControlLevelStrong:
		return "FORTE"
	default:
		return ""
	}
}

var controlLevelAliases = map[string]ControlLevel{
	"inexistent":   ControlLevelInexistent,
	"inexistente":  ControlLevelInexistent,
	"weak":         ControlLevelWeak,
	"fraco":        ControlLevelWeak,
	"moderate":     ControlLevelModerate,
	"mediano":      ControlLevelModerate,
	"satisfactory": ControlLevelSatisfactory,
	"satisfatório": ControlLevelSatisfactory,
	"satisfatorio": ControlLevelSatisfactory,
	"strong":       ControlLevelStrong,
	"forte":        ControlLevelStrong,
}

// ParseControlLevel parses a control tag as written in a register workbook
// (Portuguese) or in English. Case and surrounding spaces are ignored.
func ParseControlLevel(s string) (ControlLevel, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if l, ok := controlLevelAliases[key]; ok {
		return l, nil
	}
	return "", goerr.Wrap(ErrUnknownControlLevel, "invalid control level tag", goerr.V("tag", s))
}
