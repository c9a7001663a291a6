package steprunner

import "strings"

// keyAliases maps keysym names recorded by the workflow editor to the key
// names the page driver understands.
var keyAliases = map[string]string{
	"Return":       "Enter",
	"KP_Enter":     "Enter",
	"BackSpace":    "Backspace",
	"Prior":        "PageUp",
	"Next":         "PageDown",
	"Up":           "ArrowUp",
	"Down":         "ArrowDown",
	"Left":         "ArrowLeft",
	"Right":        "ArrowRight",
	"space":        "Space",
	"Caps_Lock":    "CapsLock",
	"ISO_Left_Tab": "Tab",
	"Esc":          "Escape",
	"Del":          "Delete",
	"minus":        "-",
	"plus":         "+",
	"period":       ".",
	"comma":        ",",
	"slash":        "/",
}

var modifierAliases = map[string]string{
	"Control":   "Control",
	"Control_L": "Control",
	"Control_R": "Control",
	"Ctrl":      "Control",
	"Shift":     "Shift",
	"Shift_L":   "Shift",
	"Shift_R":   "Shift",
	"Alt":       "Alt",
	"Alt_L":     "Alt",
	"Alt_R":     "Alt",
	"Option":    "Alt",
	"Meta":      "Meta",
	"Meta_L":    "Meta",
	"Meta_R":    "Meta",
	"Super_L":   "Meta",
	"Super_R":   "Meta",
	"Cmd":       "Meta",
	"Command":   "Meta",
}

// NormalizeKey converts a key description such as "Return", "<Escape>",
// "Control_L" or "Control-a" into a driver key name ("Enter", "Escape",
// "Control", "Control+a"). Unknown names pass through unchanged.
func NormalizeKey(raw string) string {
	key := strings.TrimSpace(raw)
	key = strings.TrimSuffix(strings.TrimPrefix(key, "<"), ">")
	if key == "" {
		return ""
	}

	parts := strings.FieldsFunc(key, func(r rune) bool { return r == '-' || r == '+' })
	if len(parts) <= 1 {
		return normalizeSingle(key)
	}

	// Only treat the string as a chord when everything before the last part
	// is a modifier; otherwise it is a literal key name.
	chord := make([]string, 0, len(parts))
	for _, p := range parts[:len(parts)-1] {
		mod, ok := modifierAliases[p]
		if !ok {
			return normalizeSingle(key)
		}
		chord = append(chord, mod)
	}
	chord = append(chord, normalizeSingle(parts[len(parts)-1]))
	return strings.Join(chord, "+")
}

func normalizeSingle(key string) string {
	if mod, ok := modifierAliases[key]; ok {
		return mod
	}
	if alias, ok := keyAliases[key]; ok {
		return alias
	}
	return key
}
