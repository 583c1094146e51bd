package types

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// Classification is the banded severity of a risk level
type Classification string

const (
	ClassificationAcceptable   Classification = "acceptable"
	ClassificationManageable   Classification = "manageable"
	ClassificationUndesirable  Classification = "undesirable"
	ClassificationUnacceptable Classification = "unacceptable"
)

// Band thresholds, upper bound inclusive
const (
	AcceptableMaxLevel  = 2.0
	ManageableMaxLevel  = 6.0
	UndesirableMaxLevel = 9.0
)

// ErrUnknownClassification is returned when a label is not one of the four bands
var ErrUnknownClassification = goerr.New("unknown risk classification")

// AllClassifications returns all classifications ordered from least to most severe
func AllClassifications() []Classification {
	return []Classification{
		ClassificationAcceptable,
		ClassificationManageable,
		ClassificationUndesirable,
		ClassificationUnacceptable,
	}
}

// Classify maps a numeric risk level to its band. It is the only place where
// thresholds are applied, for both inherent and residual levels.
func Classify(level float64) Classification {
	switch {
	case level <= AcceptableMaxLevel:
		return ClassificationAcceptable
	case level <= ManageableMaxLevel:
		return ClassificationManageable
	case level <= UndesirableMaxLevel:
		return ClassificationUndesirable
	default:
		return ClassificationUnacceptable
	}
}

// IsValid checks if the classification is one of the four bands
func (c Classification) IsValid() bool {
	return c.Severity() > 0
}

// Severity returns 1 (acceptable) to 4 (unacceptable), or 0 for an invalid value
func (c Classification) Severity() int {
	switch c {
	case ClassificationAcceptable:
		return 1
	case ClassificationManageable:
		return 2
	case ClassificationUndesirable:
		return 3
	case ClassificationUnacceptable:
		return 4
	default:
		return 0
	}
}

// String returns the string representation of the classification
func (c Classification) String() string {
	return string(c)
}

// Label returns the display name of the classification
func (c Classification) Label() string {
	switch c {
	case ClassificationAcceptable:
		return "Acceptable"
	case ClassificationManageable:
		return "Manageable"
	case ClassificationUndesirable:
		return "Undesirable"
	case ClassificationUnacceptable:
		return "Unacceptable"
	default:
		return ""
	}
}

var classificationAliases = map[string]Classification{
	"acceptable":   ClassificationAcceptable,
	"aceitável":    ClassificationAcceptable,
	"aceitavel":    ClassificationAcceptable,
	"manageable":   ClassificationManageable,
	"gerenciável":  ClassificationManageable,
	"gerenciavel":  ClassificationManageable,
	"undesirable":  ClassificationUndesirable,
	"indesejável":  ClassificationUndesirable,
	"indesejavel":  ClassificationUndesirable,
	"unacceptable": ClassificationUnacceptable,
	"inaceitável":  ClassificationUnacceptable,
	"inaceitavel":  ClassificationUnacceptable,
}

// ParseClassification parses a classification label as written in a register
// workbook (Portuguese) or in English. Case and surrounding spaces are ignored.
func ParseClassification(s string) (Classification, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if c, ok := classificationAliases[key]; ok {
		return c, nil
	}
	return "", goerr.Wrap(ErrUnknownClassification, "invalid classification label", goerr.V("label", s))
}
