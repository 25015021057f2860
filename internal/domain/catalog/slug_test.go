package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Icon Pack Vol. 2", "icon-pack-vol-2"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Café Résumé", "cafe-resume"},
		{"UPPER_case & symbols!", "upper-case-symbols"},
		{"---", ""},
		{"already-a-slug", "already-a-slug"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}
