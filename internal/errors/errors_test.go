package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversionError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ConversionError
		want string
	}{
		{
			name: "message only",
			err:  New(CodeConfiguration, "reference workbook incomplete"),
			want: "reference workbook incomplete",
		},
		{
			name: "message with cause",
			err:  Wrap(CodeConfiguration, "cannot open reference workbook", errors.New("no such file")),
			want: "cannot open reference workbook: no such file",
		},
		{
			name: "details do not leak into the message",
			err:  NewWithDetails(CodeSchemaViolation, "schema validation failed", []string{"Max. depth [%]"}),
			want: "schema validation failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestConversionError_Unwrap(t *testing.T) {
	cause := errors.New("disk gone")
	err := Wrap(CodeConfiguration, "cannot read reference", cause)

	assert.True(t, errors.Is(err, cause))

	var ce *ConversionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, CodeConfiguration, ce.Code)
}

func TestCodeOf(t *testing.T) {
	violation := SchemaViolation("Pipe Tally", nil)

	assert.Equal(t, CodeSchemaViolation, CodeOf(violation))
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
	assert.Equal(t, Code(""), CodeOf(nil))

	// The code survives fmt.Errorf %w wrapping.
	wrapped := fmt.Errorf("convert workbook: %w", violation)
	assert.True(t, IsCode(wrapped, CodeSchemaViolation))
	assert.False(t, IsCode(wrapped, CodeConfiguration))
}

func TestInputNotFound(t *testing.T) {
	err := InputNotFound("/data/run4.xlsx")

	assert.Equal(t, CodeInputNotFound, err.Code)
	assert.Equal(t, "input file /data/run4.xlsx does not exist", err.Error())
	assert.Equal(t, "/data/run4.xlsx", err.Details)
}

func TestSchemaViolation(t *testing.T) {
	details := map[string][]string{"missing": {"Comments"}}
	err := SchemaViolation("Pipe Tally 10in", details)

	assert.Equal(t, CodeSchemaViolation, err.Code)
	assert.Equal(t, `schema validation failed for sheet "Pipe Tally 10in"`, err.Error())
	assert.Equal(t, details, err.Details)
}

func TestSchemaWarning(t *testing.T) {
	err := SchemaWarning("Pipe Tally", []string{"Operator remarks", "Shift"})

	assert.Equal(t, CodeSchemaWarning, err.Code)
	assert.Equal(t, `sheet "Pipe Tally" has extra columns: Operator remarks, Shift`, err.Error())
	assert.Equal(t, []string{"Operator remarks", "Shift"}, err.Details)
}

func TestMissingDesignatedSheet(t *testing.T) {
	tests := []struct {
		name  string
		kinds []string
		want  string
	}{
		{
			name:  "single kind",
			kinds: []string{"pipe tally"},
			want:  "input workbook has no pipe tally sheet",
		},
		{
			name:  "both kinds",
			kinds: []string{"pipe tally", "wall thickness"},
			want:  "input workbook has no pipe tally and wall thickness sheet",
		},
		{
			name:  "three kinds join with commas",
			kinds: []string{"a", "b", "c"},
			want:  "input workbook has no a, b and c sheet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MissingDesignatedSheet(tt.kinds)
			assert.Equal(t, CodeMissingDesignatedSheet, err.Code)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}
