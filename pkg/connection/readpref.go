package connection

import (
	"fmt"
	"strings"
)

// ReadPreference selects which members of a replicated deployment serve reads.
type ReadPreference string

const (
	ReadPrimary            ReadPreference = "primary"
	ReadPrimaryPreferred   ReadPreference = "primaryPreferred"
	ReadSecondary          ReadPreference = "secondary"
	ReadSecondaryPreferred ReadPreference = "secondaryPreferred"
	ReadNearest            ReadPreference = "nearest"
)

const readPreferencePrefix = "readpreference."

var readPreferences = []ReadPreference{
	ReadPrimary,
	ReadPrimaryPreferred,
	ReadSecondary,
	ReadSecondaryPreferred,
	ReadNearest,
}

// ReadPreferences returns every recognized read preference.
func ReadPreferences() []ReadPreference {
	out := make([]ReadPreference, len(readPreferences))
	copy(out, readPreferences)
	return out
}

// ParseReadPreference accepts mode names ("secondaryPreferred"), constant
// style names ("SECONDARY_PREFERRED") and the "ReadPreference." prefixed form.
// An empty string yields ReadPrimary.
func ParseReadPreference(s string) (ReadPreference, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.TrimPrefix(key, readPreferencePrefix)
	key = strings.ReplaceAll(key, "_", "")

	if key == "" {
		return ReadPrimary, nil
	}
	for _, rp := range readPreferences {
		if key == strings.ToLower(string(rp)) {
			return rp, nil
		}
	}
	return "", fmt.Errorf("%w: unknown read preference %q", ErrConfiguration, s)
}

// Valid reports whether rp is one of the recognized constants.
func (rp ReadPreference) Valid() bool {
	for _, known := range readPreferences {
		if rp == known {
			return true
		}
	}
	return false
}

func (rp ReadPreference) String() string {
	return string(rp)
}

// UnmarshalText normalizes recognized spellings. Unrecognized values are kept
// as-is and rejected by Options.Validate.
func (rp *ReadPreference) UnmarshalText(text []byte) error {
	if parsed, err := ParseReadPreference(string(text)); err == nil {
		*rp = parsed
		return nil
	}
	*rp = ReadPreference(text)
	return nil
}
