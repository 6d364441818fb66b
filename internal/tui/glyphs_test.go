package tui

import (
	"testing"

	"medapp-cli/internal/viewstate"
)

func TestGlyphs_FromEnv(t *testing.T) {
	t.Setenv("MEDAPP_TUI_GLYPHS", "")
	setGlyphs(glyphSetUnicode)
	applyGlyphPreference()
	if got := glyphs(); got != glyphSetUnicode {
		t.Fatalf("expected unicode glyphs by default; got %v", got)
	}

	t.Setenv("MEDAPP_TUI_GLYPHS", "ascii")
	applyGlyphPreference()
	if got := glyphs(); got != glyphSetASCII {
		t.Fatalf("expected ascii glyphs; got %v", got)
	}

	// Unknown values keep the current set.
	t.Setenv("MEDAPP_TUI_GLYPHS", "bogus")
	applyGlyphPreference()
	if got := glyphs(); got != glyphSetASCII {
		t.Fatalf("expected unknown to be ignored; got %v", got)
	}
	setGlyphs(glyphSetUnicode)
}

func TestGlyphMarker_DistinctPerIcon(t *testing.T) {
	icons := []string{viewstate.IconScheduled, viewstate.IconInProgress, viewstate.IconCompleted, viewstate.IconCancelled}
	for _, gs := range []glyphSet{glyphSetUnicode, glyphSetASCII} {
		setGlyphs(gs)
		seen := map[string]string{}
		for _, icon := range icons {
			g := glyphMarker(icon)
			if prev, dup := seen[g]; dup {
				t.Fatalf("glyph set %v: %s and %s share marker %q", gs, prev, icon, g)
			}
			seen[g] = icon
		}
		if glyphMarker("unknown") == "" {
			t.Fatalf("glyph set %v: expected a fallback marker", gs)
		}
	}
	setGlyphs(glyphSetUnicode)
}
