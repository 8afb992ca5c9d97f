package domain

import (
	"regexp"
	"strconv"
)

var durationToken = regexp.MustCompile(`(\d+)([wdhms])`)

var unitSeconds = map[string]int64{
	"w": 604800,
	"d": 86400,
	"h": 3600,
	"m": 60,
	"s": 1,
}

// ParseRouterDuration converts a device-native duration string such as
// "2h30m" into whole seconds. Substrings that do not form an <integer><unit>
// token contribute nothing: the device is the only producer of these strings
// and emits them well-formed, so the permissive contract is kept rather than
// failing on input this system never constructs.
func ParseRouterDuration(s string) int64 {
	if s == "" || s == "0s" {
		return 0
	}
	var total int64
	for _, m := range durationToken.FindAllStringSubmatch(s, -1) {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		total += n * unitSeconds[m[2]]
	}
	return total
}
