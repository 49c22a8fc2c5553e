package locale

import "strings"

// InferRegionFromPhone returns the region code whose dialing prefix matches
// the number, or "" when no supported region matches.
func InferRegionFromPhone(phone string) string {
	normalized := strings.TrimSpace(phone)

	for _, code := range PreferredRegions {
		for _, prefix := range Countries[code].PhonePrefixes {
			if strings.HasPrefix(normalized, prefix) {
				return code
			}
		}
	}

	return ""
}
