package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextFolderColorCyclesThroughPalette(t *testing.T) {
	expected := []FolderColor{
		ColorRed, ColorOrange, ColorYellow, ColorGreen,
		ColorBlue, ColorNavy, ColorPurple,
	}

	for i, want := range expected {
		assert.Equal(t, want, NextFolderColor(i), "folder %d", i)
	}

	// The rotation wraps around after the palette is exhausted.
	assert.Equal(t, ColorRed, NextFolderColor(7))
	assert.Equal(t, ColorOrange, NextFolderColor(8))
	assert.Equal(t, ColorRed, NextFolderColor(14))
}

func TestNextFolderColorIsDeterministic(t *testing.T) {
	first := NextFolderColor(3)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, NextFolderColor(3))
	}
}

func TestFolderColorValid(t *testing.T) {
	assert.True(t, ColorRed.Valid())
	assert.True(t, ColorPurple.Valid())
	assert.False(t, FolderColor("PINK").Valid())
	assert.False(t, FolderColor("").Valid())
	assert.False(t, FolderColor("red").Valid())
}
