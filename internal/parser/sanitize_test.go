package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "json fence",
			in:   "```json\n{\"gist\": \"x\"}\n```",
			want: "{\"gist\": \"x\"}",
		},
		{
			name: "bare fence multi line",
			in:   "```\n{\n  \"a\": 1\n}\n```",
			want: "{\n  \"a\": 1\n}",
		},
		{
			name: "leading whitespace",
			in:   "\n  ```json\n{}\n```\n",
			want: "{}",
		},
		{
			name: "single line",
			in:   "```json {\"a\": 1}```",
			want: "{\"a\": 1}",
		},
		{
			name: "unwrapped untouched",
			in:   "  {\"a\": 1}  ",
			want: "  {\"a\": 1}  ",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.in)
			assert.Equal(t, tt.want, got)
			// 再次清洗不应改变结果
			assert.Equal(t, got, Sanitize(got))
		})
	}
}
