package utils

import "strings"

// NormalizeDigits folds Persian and Arabic-Indic digits to ASCII so mobile
// numbers typed with either keyboard layout compare and store identically.
func NormalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		}
		return r
	}, s)
}
