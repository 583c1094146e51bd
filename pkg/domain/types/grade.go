package types

import (
	"math"

	"github.com/m-mizutani/goerr/v2"
)

// Grade is a probability or impact grade on the register's 1-4 scale
type Grade int

const (
	MinGrade Grade = 1
	MaxGrade Grade = 4
)

// ErrInvalidGrade is returned when a number is not an integer within the grade scale
var ErrInvalidGrade = goerr.New("invalid grade")

// AllGrades returns every grade in ascending order
func AllGrades() []Grade {
	grades := make([]Grade, 0, MaxGrade-MinGrade+1)
	for g := MinGrade; g <= MaxGrade; g++ {
		grades = append(grades, g)
	}
	return grades
}

// IsValid checks if the grade is within the scale
func (g Grade) IsValid() bool {
	return g >= MinGrade && g <= MaxGrade
}

// GradeFromNumber converts a coerced cell value to a Grade
func GradeFromNumber(v float64) (Grade, error) {
	if v != math.Trunc(v) {
		return 0, goerr.Wrap(ErrInvalidGrade, "grade must be an integer", goerr.V("value", v))
	}
	g := Grade(v)
	if !g.IsValid() {
		return 0, goerr.Wrap(ErrInvalidGrade, "grade out of range", goerr.V("value", v))
	}
	return g, nil
}
