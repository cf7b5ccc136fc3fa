package form

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	return Input{
		File:    &File{Name: "data.csv", Data: []byte("a,b,c\n")},
		Weights: "1,1,1,1",
		Impacts: "+,+,-,+",
		Email:   "user@example.com",
	}
}

func validationMessage(t *testing.T, err error) string {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %v", err)
	return ve.Message
}

func TestValidateAcceptsValidInput(t *testing.T) {
	assert.NoError(t, Validate(validInput()))
}

func TestValidateOrder(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
		want   string
		field  Field
	}{
		{"no file", func(in *Input) { in.File = nil }, MsgSelectCSV, FieldFile},
		{"not csv", func(in *Input) { in.File.Name = "data.xlsx" }, MsgSelectCSV, FieldFile},
		{"upper-case extension", func(in *Input) { in.File.Name = "DATA.CSV" }, MsgSelectCSV, FieldFile},
		{"empty weights", func(in *Input) { in.Weights = "   " }, MsgEnterWeights, FieldWeights},
		{"non-numeric weight", func(in *Input) { in.Weights = "1,abc,1,1" }, MsgWeightsNumeric, FieldWeights},
		{"empty weight token", func(in *Input) { in.Weights = "1,,1,1" }, MsgWeightsNumeric, FieldWeights},
		{"infinite weight", func(in *Input) { in.Weights = "1,Inf,1,1" }, MsgWeightsNumeric, FieldWeights},
		{"nan weight", func(in *Input) { in.Weights = "1,NaN,1,1" }, MsgWeightsNumeric, FieldWeights},
		{"overflowing weight", func(in *Input) { in.Weights = "1,1e400,1,1" }, MsgWeightsNumeric, FieldWeights},
		{"empty impacts", func(in *Input) { in.Impacts = "" }, MsgEnterImpacts, FieldImpacts},
		{"bad impact", func(in *Input) { in.Impacts = "+,+,x,+" }, MsgImpactsSign, FieldImpacts},
		{"double sign impact", func(in *Input) { in.Impacts = "+,++,-,+" }, MsgImpactsSign, FieldImpacts},
		{"count mismatch", func(in *Input) { in.Impacts = "+,+,-" }, MsgCountMismatch, FieldImpacts},
		{"empty email", func(in *Input) { in.Email = " " }, MsgEnterEmail, FieldEmail},
		{"invalid email", func(in *Input) { in.Email = "not-an-email" }, MsgInvalidEmail, FieldEmail},
		// Earlier checks win over later ones.
		{"bad weight and bad email", func(in *Input) { in.Weights = "x"; in.Email = "" }, MsgWeightsNumeric, FieldWeights},
		{"bad impact beats count", func(in *Input) { in.Impacts = "*" }, MsgImpactsSign, FieldImpacts},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			err := Validate(in)
			require.Error(t, err)
			assert.Equal(t, tt.want, validationMessage(t, err))

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidateTrimsTokens(t *testing.T) {
	in := validInput()
	in.Weights = "  0.5 , 2,1e-3 , -1  "
	in.Impacts = " + , -,+ , - "
	in.Email = "  user@example.com  "

	assert.NoError(t, Validate(in))
}

func TestValidateWeightsAgainstImpactCount(t *testing.T) {
	tests := []struct {
		weights string
		impacts string
		ok      bool
	}{
		{"1", "+", true},
		{"1,2", "+,-", true},
		{"1,2,3", "+,-", false},
		{"1", "+,-", false},
		{"1.5,2.5", "-,-", true},
	}
	for _, tt := range tests {
		in := validInput()
		in.Weights = tt.weights
		in.Impacts = tt.impacts
		err := Validate(in)
		if tt.ok {
			assert.NoError(t, err, "%q / %q", tt.weights, tt.impacts)
		} else {
			assert.Error(t, err, "%q / %q", tt.weights, tt.impacts)
		}
	}
}

func TestValidateImpactsCaseAndSpacing(t *testing.T) {
	for _, impacts := range []string{"+,+,-,+", " +,+ ,- , +"} {
		in := validInput()
		in.Impacts = impacts
		assert.NoError(t, Validate(in), impacts)
	}
	for _, impacts := range []string{"+,+,-,plus", "+,+,- -,+", "+,+,−,+"} {
		in := validInput()
		in.Impacts = impacts
		assert.Error(t, Validate(in), impacts)
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"a@b.c", true},
		{"first.last@sub.example.org", true},
		{"a@b", false},
		{"a b@c.d", false},
		{"a@b c.d", false},
		{"@b.c", false},
		{"a@@b.c", false},
		{"a@.c", false},
	}
	for _, tt := range tests {
		in := validInput()
		in.Email = tt.email
		err := Validate(in)
		if tt.ok {
			assert.NoError(t, err, tt.email)
		} else {
			require.Error(t, err, tt.email)
			assert.Equal(t, MsgInvalidEmail, validationMessage(t, err), tt.email)
		}
	}
}
