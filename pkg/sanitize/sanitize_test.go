package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain", "Taro", "Taro"},
		{"trims", "  Taro  ", "Taro"},
		{"strips tags", "<b>Taro</b>", "Taro"},
		{"drops script", "Taro<script>alert('x')</script>", "Taro"},
		{"keeps ampersand", "Tennis & Tea", "Tennis & Tea"},
		{"japanese", "<i>東京大学</i>", "東京大学"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.input))
		})
	}
}
