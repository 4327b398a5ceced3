package intake_test

import (
	"testing"

	"github.com/fwojciec/relay/intake"
	"github.com/stretchr/testify/assert"
)

func TestIsNoise(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want bool
	}{
		{"", true},
		{" ", true},
		{"k", true},
		{"😀😀😀", true},
		{"typing…", true},
		{"Alice is typing...", true},
		{"Bob joined using this group's invite link", true},
		{"Carol changed the subject to \"Trip\"", true},
		{"This message was deleted", true},
		{"Dan left", true},
		{"Messages and calls are end-to-end encrypted. No one outside of this chat can read them.", true},
		{"ok", false},
		{"hi there", false},
		{"I was typing a long reply", false},
		{"turn left at the corner", false},
		{"কেমন আছো", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, intake.IsNoise(tt.text))
		})
	}
}
