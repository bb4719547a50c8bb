package tmux

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/atomicstack/tmux-prompts/internal/apperror"
)

var tmuxKeyNames = map[string]string{
	"Space":     "Space",
	"Esc":       "Escape",
	"Enter":     "Enter",
	"Tab":       "Tab",
	"Backspace": "BSpace",
	"Delete":    "DC",
	"Insert":    "IC",
	"Home":      "Home",
	"End":       "End",
	"PageUp":    "PPage",
	"PageDown":  "NPage",
	"Up":        "Up",
	"Down":      "Down",
	"Left":      "Left",
	"Right":     "Right",
}

// KeyName converts an accelerator such as "Ctrl+Shift+K" into tmux key
// syntax ("C-S-k"). Shifted letters without Ctrl become upper case.
func KeyName(combo string) (string, error) {
	parts := strings.Split(strings.TrimSpace(combo), "+")
	if len(parts) == 0 || parts[len(parts)-1] == "" {
		// "Ctrl++" names the plus key
		if strings.HasSuffix(combo, "++") {
			parts = append(parts[:len(parts)-2], "+")
		} else {
			return "", apperror.ValidationFailed("hotkey", fmt.Sprintf("invalid hotkey %q", combo))
		}
	}
	var ctrl, shift, alt bool
	for _, mod := range parts[:len(parts)-1] {
		switch strings.ToLower(mod) {
		case "ctrl", "control", "meta", "cmd", "super":
			ctrl = true
		case "shift":
			shift = true
		case "alt", "option":
			alt = true
		default:
			return "", apperror.ValidationFailed("hotkey", fmt.Sprintf("unknown modifier %q in %q", mod, combo))
		}
	}

	key := parts[len(parts)-1]
	if name, ok := tmuxKeyNames[key]; ok {
		key = name
	} else if utf8.RuneCountInString(key) == 1 {
		r, _ := utf8.DecodeRuneInString(key)
		if unicode.IsLetter(r) {
			if shift && !ctrl {
				key = string(unicode.ToUpper(r))
				shift = false
			} else {
				key = string(unicode.ToLower(r))
			}
		}
	} else if !isFunctionKey(key) {
		return "", apperror.ValidationFailed("hotkey", fmt.Sprintf("unsupported key %q", key))
	}

	var b strings.Builder
	if ctrl {
		b.WriteString("C-")
	}
	if alt {
		b.WriteString("M-")
	}
	if shift {
		b.WriteString("S-")
	}
	b.WriteString(key)
	return b.String(), nil
}

func isFunctionKey(key string) bool {
	if len(key) < 2 || len(key) > 3 || key[0] != 'F' {
		return false
	}
	return strings.Trim(key[1:], "0123456789") == ""
}

// hasModifier reports whether a tmux key carries C- or M-, which is required
// for bindings in the root table so ordinary typing is not captured.
func hasModifier(key string) bool {
	return strings.HasPrefix(key, "C-") || strings.HasPrefix(key, "M-") || isFunctionKey(key)
}
