package hid

import (
	"fmt"
	"strconv"
	"strings"
)

// UsageForRune maps a printable rune to its usage ID and the modifiers needed
// to type it. Supported: a-z, A-Z, 0-9, space, newline and tab.
func UsageForRune(r rune) (Usage, Modifier, error) {
	switch {
	case r >= 'a' && r <= 'z':
		return UsageA + Usage(r-'a'), 0, nil
	case r >= 'A' && r <= 'Z':
		return UsageA + Usage(r-'A'), ModLeftShift, nil
	case r == '0':
		return Usage0, 0, nil
	case r >= '1' && r <= '9':
		return Usage1 + Usage(r-'1'), 0, nil
	case r == ' ':
		return UsageSpace, 0, nil
	case r == '\n', r == '\r':
		return UsageEnter, 0, nil
	case r == '\t':
		return UsageTab, 0, nil
	}
	return UsageNone, 0, fmt.Errorf("no keyboard usage for %q", r)
}

// ReportForRune returns the press report for r.
func ReportForRune(r rune) (InputReport, error) {
	u, mods, err := UsageForRune(r)
	if err != nil {
		return InputReport{}, err
	}
	return Press(mods, u)
}

// ParseKey resolves a key option: a single supported character, or a
// non-zero usage ID written as "0x04".
func ParseKey(s string) (InputReport, error) {
	runes := []rune(s)
	if len(runes) == 1 {
		return ReportForRune(runes[0])
	}
	if hex, ok := strings.CutPrefix(s, "0x"); ok {
		v, err := strconv.ParseUint(hex, 16, 8)
		if err == nil && Usage(v) != UsageNone && Usage(v) <= UsageMax {
			return KeyPress(Usage(v)), nil
		}
	}
	return InputReport{}, fmt.Errorf("unsupported key %q", s)
}
