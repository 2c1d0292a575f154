package robocopy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySuccessBoundary(t *testing.T) {
	for code := 0; code <= 16; code++ {
		t.Run(fmt.Sprintf("code_%d", code), func(t *testing.T) {
			res := Classify(code)
			assert.Equal(t, code, res.Code, "code should be passed through")
			assert.Equal(t, code < 8, res.Success, "codes below 8 succeed, 8 and above fail")
			assert.NotEmpty(t, res.Message, "every documented code has a message")
		})
	}
}

func TestClassifyMessages(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		contains string
	}{
		{name: "nothing_to_do", code: 0, contains: "No files were copied"},
		{name: "all_copied", code: 1, contains: "All files were copied successfully"},
		{name: "copy_errors", code: 8, contains: "did not copy"},
		{name: "serious_error", code: 16, contains: "Serious error"},
		{name: "negative", code: -1, contains: "Unknown exit code -1"},
		{name: "out_of_range", code: 17, contains: "Unknown exit code 17"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.code)
			assert.Contains(t, res.Message, tt.contains)
		})
	}
}

func TestClassifyUnknownIsFailure(t *testing.T) {
	assert.False(t, Classify(17).Success)
	assert.False(t, Classify(-3).Success)
	assert.True(t, IsFailure(-3))
	assert.True(t, IsFailure(8))
	assert.False(t, IsFailure(7))
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "SUCCESS (1): All files were copied successfully.", Classify(1).String())
	assert.Contains(t, Classify(9).String(), "FAILURE (9)")
}
