package changes

import "unicode/utf8"

// Limits bounds everything the engine hands to a fixed-size display.
// Character counts are in runes.
type Limits struct {
	PreviewRows          int `toml:"preview_rows"`
	PreviewChars         int `toml:"preview_chars"`
	UntrackedPreviewRows int `toml:"untracked_preview_rows"`
	FolderPreviewRows    int `toml:"folder_preview_rows"`
	FolderFileRows       int `toml:"folder_file_rows"`
	SymbolRows           int `toml:"symbol_rows"`
	SymbolChars          int `toml:"symbol_chars"`
}

func DefaultLimits() Limits {
	return Limits{
		PreviewRows:          28,
		PreviewChars:         96,
		UntrackedPreviewRows: 24,
		FolderPreviewRows:    24,
		FolderFileRows:       6,
		SymbolRows:           8,
		SymbolChars:          56,
	}
}

// Normalize replaces every non-positive bound with its default.
func (l Limits) Normalize() Limits {
	def := DefaultLimits()
	fix := func(v *int, d int) {
		if *v <= 0 {
			*v = d
		}
	}
	fix(&l.PreviewRows, def.PreviewRows)
	fix(&l.PreviewChars, def.PreviewChars)
	fix(&l.UntrackedPreviewRows, def.UntrackedPreviewRows)
	fix(&l.FolderPreviewRows, def.FolderPreviewRows)
	fix(&l.FolderFileRows, def.FolderFileRows)
	fix(&l.SymbolRows, def.SymbolRows)
	fix(&l.SymbolChars, def.SymbolChars)
	return l
}

const ellipsis = "..."

// Truncate cuts text to at most max runes, ending it with "..." when
// something was dropped and there is room for the marker.
func Truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= max {
		return text
	}
	keep := max - len(ellipsis)
	suffix := ellipsis
	if keep <= 0 {
		keep = max
		suffix = ""
	}
	n := 0
	for i := range text {
		if n == keep {
			return text[:i] + suffix
		}
		n++
	}
	return text
}

// BoundedNames returns the sorted names of set, capped to SymbolRows
// entries of at most SymbolChars runes each.
func BoundedNames(set NameSet, lim Limits) []string {
	lim = lim.Normalize()
	names := set.Sorted()
	if len(names) > lim.SymbolRows {
		names = names[:lim.SymbolRows]
	}
	for i, name := range names {
		names[i] = Truncate(name, lim.SymbolChars)
	}
	return names
}
