package bloqs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTemplate(t *testing.T) {
	testCases := []struct {
		name     string
		template string
		bindings map[string]string
		expected string
	}{
		{
			name:     "SingleName",
			template: "digitalRead({{pin}})",
			bindings: map[string]string{"pin": "3"},
			expected: "digitalRead(3)",
		},
		{
			name:     "RepeatedAndSpaced",
			template: "analogWrite({{ pin }}, {{value}}); // pin {{pin}}",
			bindings: map[string]string{"pin": "9", "value": "128"},
			expected: "analogWrite(9, 128); // pin 9",
		},
		{
			name:     "NoPlaceholders",
			template: "delay(100);",
			bindings: nil,
			expected: "delay(100);",
		},
		{
			name:     "UnusedBindingsAreFine",
			template: "{{a}}",
			bindings: map[string]string{"a": "1", "b": "2"},
			expected: "1",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := RenderTemplate(tc.template, tc.bindings)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestRenderTemplateRejectsUnboundNames(t *testing.T) {
	_, err := RenderTemplate("digitalWrite({{pin}}, {{value}})", map[string]string{"pin": "3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value")

	_, err = RenderTemplate("{{a}} {{b}}", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "b")
}
