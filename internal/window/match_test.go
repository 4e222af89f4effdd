package window

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func handles(titles ...string) []*Handle {
	out := make([]*Handle, len(titles))
	for i, title := range titles {
		out[i] = &Handle{ID: uint32(i + 1), Title: title}
	}
	return out
}

func TestScore(t *testing.T) {
	tests := []struct {
		name  string
		query string
		h     *Handle
		want  int
	}{
		{"substring in title", "fire", &Handle{Title: "Mozilla Firefox"}, matchSubstring},
		{"substring in class", "fire", &Handle{Class: "firefox"}, matchSubstring},
		{"case insensitive", "FIREFOX", &Handle{Title: "Mozilla Firefox"}, matchSubstring},
		{"tokens out of order", "firefox mozilla", &Handle{Title: "Mozilla Firefox"}, matchToken},
		{"token missing", "mozilla chrome", &Handle{Title: "Mozilla Firefox"}, matchNone},
		{"single token no substring", "chrom", &Handle{Title: "Mozilla Firefox"}, matchNone},
		{"empty query", "", &Handle{Title: "Mozilla Firefox"}, matchNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, score(tt.query, tt.h))
		})
	}
}

func TestBestMatchesPrefersSubstringOverTokens(t *testing.T) {
	wins := handles("Mozilla Firefox", "firefox-settings helper", "Notes about firefox mozilla")
	// All three contain "firefox"; only the query below distinguishes them.
	got := bestMatches("mozilla firefox", wins)

	// "Notes about firefox mozilla" only token-matches; the others contain
	// the exact substring and must win.
	assert.Equal(t, []int{0}, got)
}

func TestBestMatchesKeepsInputOrder(t *testing.T) {
	wins := handles("Terminal - vim", "Terminal - htop", "Files")
	got := bestMatches("terminal", wins)
	assert.Equal(t, []int{0, 1}, got)
}

func TestBestMatchesNoMatch(t *testing.T) {
	wins := handles("Terminal", "Files")
	assert.Empty(t, bestMatches("spreadsheet", wins))
}

func TestGeometryContains(t *testing.T) {
	g := Geometry{X: 100, Y: 300, Width: 400, Height: 200}

	assert.True(t, g.Contains(image.Pt(100, 300)))
	assert.True(t, g.Contains(image.Pt(120, 340)))
	assert.True(t, g.Contains(image.Pt(499, 499)))
	assert.False(t, g.Contains(image.Pt(500, 400)))
	assert.False(t, g.Contains(image.Pt(99, 350)))
	assert.False(t, g.Contains(image.Pt(200, 501)))
}

func TestGeometryOrigin(t *testing.T) {
	g := Geometry{X: 7, Y: -3, Width: 10, Height: 10}
	assert.Equal(t, image.Pt(7, -3), g.Origin())
}
