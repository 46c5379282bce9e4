package parser

import "strconv"

// ParseCount parses the leading base-10 integer of s.
//
// Like the counters on the source pages it is lenient: trailing garbage is
// ignored ("123abc" is 123), and anything that does not start with a number,
// is negative or overflows int64 yields 0.
func ParseCount(s string) int64 {
	i := 0
	negative := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		negative = s[i] == '-'
		i++
	}

	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start || negative {
		return 0
	}

	n, err := strconv.ParseInt(s[start:i], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
