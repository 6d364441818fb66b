package tui

import (
	"os"
	"strings"
	"sync"

	"medapp-cli/internal/viewstate"
)

// Terminal apps can't change the user's font, so timeline markers come in a Unicode
// and an ASCII set.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func applyGlyphPreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("MEDAPP_TUI_GLYPHS"))) {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

// glyphMarker maps a presentation marker icon to a terminal glyph.
func glyphMarker(icon string) string {
	ascii := glyphs() == glyphSetASCII
	switch icon {
	case viewstate.IconScheduled:
		if ascii {
			return "o"
		}
		return "◷"
	case viewstate.IconInProgress:
		if ascii {
			return "~"
		}
		return "◐"
	case viewstate.IconCompleted:
		if ascii {
			return "+"
		}
		return "✓"
	case viewstate.IconCancelled:
		if ascii {
			return "x"
		}
		return "✗"
	default:
		if ascii {
			return "*"
		}
		return "•"
	}
}

func glyphNew() string {
	if glyphs() == glyphSetASCII {
		return "*new*"
	}
	return "● new"
}

func glyphHRule() string {
	if glyphs() == glyphSetASCII {
		return "-"
	}
	return "─"
}
