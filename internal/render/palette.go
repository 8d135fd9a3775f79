package render

// Glyphs picks the characters the terminal preview draws with.
type Glyphs struct {
	Cell rune
	On   rune
	Off  rune
}

var (
	blockGlyphs = Glyphs{Cell: '█', On: '█', Off: '·'}
	dotGlyphs   = Glyphs{Cell: '●', On: '●', Off: ' '}
	asciiGlyphs = Glyphs{Cell: '#', On: 'O', Off: '.'}
)

// GlyphSet returns the glyphs registered under name.
func GlyphSet(name string) Glyphs {
	switch name {
	case "dots":
		return dotGlyphs
	case "ascii":
		return asciiGlyphs
	default:
		return blockGlyphs
	}
}

// GlyphSetNames returns all glyph set identifiers.
func GlyphSetNames() []string {
	return []string{"block", "dots", "ascii"}
}
