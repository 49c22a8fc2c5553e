package sanitizer

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"

	"telecare/pkg/locale"
)

var reValidPhone = regexp.MustCompile(`^(?:|\+?[0-9][0-9 \-()]{6,18})$`)

// SanitizePhone normalizes a contact phone to E.164. Input that does not
// look like a phone number at all is returned unchanged for the validator
// to reject; an empty string stays empty.
func SanitizePhone(phone string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" || !reValidPhone.MatchString(phone) {
		return phone
	}

	for _, region := range candidateRegions(phone) {
		parsed, err := phonenumbers.Parse(phone, region)
		if err != nil {
			continue
		}
		if phonenumbers.IsValidNumber(parsed) {
			return phonenumbers.Format(parsed, phonenumbers.E164)
		}
	}
	return phone
}

// candidateRegions puts the region inferred from the dialing prefix first so
// a prefixed number is not misread under another region's national plan.
func candidateRegions(phone string) []string {
	inferred := locale.InferRegionFromPhone(phone)
	if inferred == "" {
		return locale.PreferredRegions
	}

	regions := []string{inferred}
	for _, code := range locale.PreferredRegions {
		if code != inferred {
			regions = append(regions, code)
		}
	}
	return regions
}
