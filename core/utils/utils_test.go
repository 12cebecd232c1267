package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt64(t *testing.T) {
	assert.Equal(t, int64(42), ToInt64("42"))
	assert.Equal(t, int64(42), ToInt64(" 42 "))
	assert.Equal(t, int64(7), ToInt64(7))
	assert.Equal(t, int64(3), ToInt64(3.9))
	assert.Equal(t, int64(0), ToInt64("abc"))
	assert.Equal(t, int64(0), ToInt64(nil))
	assert.Equal(t, 12, ToInt([]byte("12")))
}

func TestToBool(t *testing.T) {
	assert.True(t, ToBool("true"))
	assert.True(t, ToBool("YES"))
	assert.True(t, ToBool(1))
	assert.False(t, ToBool("0"))
	assert.False(t, ToBool(2))
	assert.False(t, ToBool(struct{}{}))
}

func TestNameSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"Identical", "Half-Life 2", "half life 2", 1, 1},
		{"Trademark", "Portal™", "Portal", 1, 1},
		{"Partial", "The Witcher 3 Wild Hunt", "The Witcher 3", 0.6, 0.99},
		{"Unrelated", "Doom", "Stardew Valley", 0, 0},
		{"Empty", "", "Doom", 0, 0},
		{"NonLatin", "网易云音乐", "网易云音乐", 1, 1},
		{"Cyrillic", "Мир Танков", "мир танков", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := NameSimilarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, score, tt.min)
			assert.LessOrEqual(t, score, tt.max)
		})
	}
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "visual-studio-code", Slug("Visual Studio Code"))
	assert.Equal(t, "7-zip", Slug("  7-Zip  "))
	assert.Equal(t, "", Slug("!!!"))
}

func TestSlug_NonLatin(t *testing.T) {
	assert.Equal(t, "网易云音乐", Slug("网易云音乐"))
	assert.Equal(t, "мир-танков", Slug("Мир Танков"))
	assert.Equal(t, "pokémon-go", Slug("Pokémon GO"))
}

func TestKeySlug(t *testing.T) {
	assert.Equal(t, "visual-studio-code", KeySlug("Visual Studio Code"))
	assert.Equal(t, "7-zip", KeySlug("7-Zip"))
	assert.Equal(t, "网易云音乐", KeySlug("网易云音乐"))
	assert.Equal(t, "portal", KeySlug("Portal™"))
	assert.Empty(t, KeySlug("   "))

	cpp := KeySlug("C++ Builder")
	csharp := KeySlug("C# Builder")
	assert.Equal(t, "c-builder", KeySlug("C Builder"))
	assert.Regexp(t, `^c-builder-[0-9a-f]{8}$`, cpp)
	assert.Regexp(t, `^c-builder-[0-9a-f]{8}$`, csharp)
	assert.NotEqual(t, cpp, csharp)
	assert.Equal(t, cpp, KeySlug("  c++ builder "))

	symbols := KeySlug("+++")
	assert.Regexp(t, `^[0-9a-f]{8}$`, symbols)
	assert.NotEqual(t, symbols, KeySlug("###"))
}
