package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "no arguments",
			args: []string{},
			want: []string{},
		},
		{
			name: "modern flags untouched",
			args: []string{"error", "-r", "--limit", "5", "-d", "/tmp"},
			want: []string{"error", "-r", "--limit", "5", "-d", "/tmp"},
		},
		{
			name: "colon limit",
			args: []string{"error", "-t:5"},
			want: []string{"error", "--limit=5"},
		},
		{
			name: "colon directory",
			args: []string{"-d:/var/log", "error", "*.log"},
			want: []string{"--dir=/var/log", "error", "*.log"},
		},
		{
			name: "colon directory containing a colon",
			args: []string{"-d:C:/data"},
			want: []string{"--dir=C:/data"},
		},
		{
			name: "unparsable colon limit means no limit",
			args: []string{"-t:abc"},
			want: []string{"--limit=0"},
		},
		{
			name: "negative colon limit means no limit",
			args: []string{"-t:-4"},
			want: []string{"--limit=0"},
		},
		{
			name: "dashed limit is left for cobra",
			args: []string{"--limit", "abc"},
			want: []string{"--limit", "abc"},
		},
		{
			name: "arguments after terminator untouched",
			args: []string{"-r", "--", "-t:5"},
			want: []string{"-r", "--", "-t:5"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeArgs(tt.args))
		})
	}
}
