package form

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// File is the blob selected in the file input.
type File struct {
	Name string
	Data []byte
}

// Input is a snapshot of the form fields taken when the user submits.
type Input struct {
	File    *File
	Weights string
	Impacts string
	Email   string
}

// Field identifies the form field a validation failure belongs to.
type Field string

const (
	FieldFile    Field = "file"
	FieldWeights Field = "weights"
	FieldImpacts Field = "impacts"
	FieldEmail   Field = "email"
)

const (
	MsgSelectCSV      = "Please select a CSV file"
	MsgEnterWeights   = "Please enter weights"
	MsgWeightsNumeric = "Weights must be numeric values separated by commas"
	MsgEnterImpacts   = "Please enter impacts"
	MsgImpactsSign    = `Impacts must be "+" or "-" separated by commas`
	MsgCountMismatch  = "Number of weights and impacts must be equal"
	MsgEnterEmail     = "Please enter an email address"
	MsgInvalidEmail   = "Please enter a valid email address"
)

// ValidationError is returned by Validate; Message is what the user sees.
type ValidationError struct {
	Field   Field
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validate checks the input in a fixed order and reports the first failure.
func Validate(in Input) error {
	weights := strings.TrimSpace(in.Weights)
	impacts := strings.TrimSpace(in.Impacts)
	email := strings.TrimSpace(in.Email)

	if in.File == nil || !strings.HasSuffix(in.File.Name, ".csv") {
		return &ValidationError{Field: FieldFile, Message: MsgSelectCSV}
	}

	if weights == "" {
		return &ValidationError{Field: FieldWeights, Message: MsgEnterWeights}
	}
	weightTokens := splitTokens(weights)
	for _, w := range weightTokens {
		if !isFiniteNumber(w) {
			return &ValidationError{Field: FieldWeights, Message: MsgWeightsNumeric}
		}
	}

	if impacts == "" {
		return &ValidationError{Field: FieldImpacts, Message: MsgEnterImpacts}
	}
	impactTokens := splitTokens(impacts)
	for _, i := range impactTokens {
		if i != "+" && i != "-" {
			return &ValidationError{Field: FieldImpacts, Message: MsgImpactsSign}
		}
	}

	if len(weightTokens) != len(impactTokens) {
		return &ValidationError{Field: FieldImpacts, Message: MsgCountMismatch}
	}

	if email == "" {
		return &ValidationError{Field: FieldEmail, Message: MsgEnterEmail}
	}
	if !emailPattern.MatchString(email) {
		return &ValidationError{Field: FieldEmail, Message: MsgInvalidEmail}
	}
	return nil
}

func splitTokens(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func isFiniteNumber(s string) bool {
	if s == "" {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
