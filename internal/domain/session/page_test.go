package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePage(t *testing.T) {
	for _, p := range AllPages() {
		t.Run(string(p), func(t *testing.T) {
			assert.Equal(t, p, ParsePage(string(p)))
			assert.True(t, p.IsValid())
		})
	}

	unknown := []string{"", "HOME", "settings", " catalog", "../admin"}
	for _, s := range unknown {
		t.Run("unknown "+s, func(t *testing.T) {
			assert.Equal(t, PageHome, ParsePage(s))
			assert.False(t, Page(s).IsValid())
		})
	}
}
