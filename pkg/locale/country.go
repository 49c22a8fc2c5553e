package locale

// Country describes a region the service accepts contact numbers from.
type Country struct {
	Code          string   // ISO 3166-1 alpha-2 country code (e.g., "IN", "US")
	Name          string   // Human-readable country name
	PhonePrefixes []string // Valid phone number prefixes (e.g., ["+91", "91"])
}

var Countries = map[string]Country{
	"IN": {
		Code:          "IN",
		Name:          "India",
		PhonePrefixes: []string{"+91", "91"},
	},
	"US": {
		Code:          "US",
		Name:          "United States",
		PhonePrefixes: []string{"+1", "1"},
	},
}

// PreferredRegions is the parse order for numbers without a country prefix.
var PreferredRegions = []string{"IN", "US"}
