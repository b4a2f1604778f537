package pix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"", "FFFF"},
		{"A", "B915"},
		{"123456789", "29B1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Checksum(tt.in), "input %q", tt.in)
	}
}

func TestChecksum_ZeroPadded(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"a", "ab", "abc", "000201", "6304"} {
		assert.Len(t, Checksum(s), 4, "input %q", s)
	}
}
