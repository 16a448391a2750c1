package utils

// IsDigits reports whether s is non-empty and entirely ASCII digits.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, char := range s {
		if char < '0' || char > '9' {
			return false
		}
	}
	return true
}
