package gateway_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orthocode/internal/gateway"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[string]any
	}{
		{
			name: "bare object",
			text: `{"rationale":"ok"}`,
			want: map[string]any{"rationale": "ok"},
		},
		{
			name: "json fence",
			text: "```json\n{\"rationale\":\"fenced\"}\n```",
			want: map[string]any{"rationale": "fenced"},
		},
		{
			name: "plain fence",
			text: "```\n{\"rationale\":\"plain\"}\n```",
			want: map[string]any{"rationale": "plain"},
		},
		{
			name: "prose around object",
			text: "Here are the codes:\n{\"primary_code\":{\"cpt_code\":\"29881\"}}\nLet me know if you need more.",
			want: map[string]any{"primary_code": map[string]any{"cpt_code": "29881"}},
		},
		{
			name: "nested braces",
			text: `Result: {"a":{"b":{"c":1}}} done`,
			want: map[string]any{"a": map[string]any{"b": map[string]any{"c": float64(1)}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gateway.ExtractJSON(tt.text)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_Absent(t *testing.T) {
	for _, text := range []string{
		"",
		"I cannot help with that.",
		`{"rationale": "unterminated`,
		`[1, 2, 3]`,
		`null`,
		"```json\nnot json\n```",
	} {
		assert.Nil(t, gateway.ExtractJSON(text), "text %q", text)
	}
}
