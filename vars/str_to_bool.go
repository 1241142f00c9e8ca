package vars

import "strings"

// StrToBool parses flag and environment switches. Anything unrecognized is false.
func StrToBool(str string) bool {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	}
	return false
}
