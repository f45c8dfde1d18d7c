package rfc9111

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// §  1.2.2.  Delta Seconds
// §
// §     The delta-seconds rule specifies a non-negative integer, representing
// §     time in seconds.
// §
// §       delta-seconds  = 1*DIGIT
// §
// §     A recipient parsing a delta-seconds value and converting it to binary
// §     form ought to use an arithmetic type of at least 31 bits of non-
// §     negative integer range.  If a cache receives a delta-seconds value
// §     greater than the greatest integer it can represent, or if any of its
// §     subsequent calculations overflows, the cache MUST consider the value
// §     to be 2147483648 (2^31) or the greatest positive integer it can
// §     conveniently represent.

const maxDeltaSeconds = 2147483648

// deltaSeconds parses the leading digits of the given string.
// Anything following the digits (e.g. parameters) is ignored.
// It returns false if the string does not start with a digit.
func deltaSeconds(secondsStr string) (time.Duration, bool) {
	end := 0
	for end < len(secondsStr) && secondsStr[end] >= '0' && secondsStr[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	seconds, err := strconv.ParseUint(secondsStr[:end], 10, 64)
	if err != nil || seconds > maxDeltaSeconds {
		seconds = maxDeltaSeconds
	}
	return time.Second * time.Duration(seconds), true
}

func toDeltaSeconds(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}
	return fmt.Sprintf("%.f", duration.Truncate(time.Second).Seconds())
}

// This section is from the HTTP specification (RFC9110), not the cache specification
//
// §     HTTP-date    = IMF-fixdate / obs-date
//
// HttpDate parses an HTTP-date, accepting the obsolete RFC 850 and asctime forms.
func HttpDate(dateStr string) (time.Time, error) {
	if date, err := imfDate(dateStr); err == nil {
		return date, err
	} else {
		// try to parse as obsolete date
		if date, err := obsDate(dateStr); err == nil {
			return date, err
		}
		// return original error if unsuccessful
		return date, err
	}
}

// ToHttpDate formats the time as an IMF-fixdate.
func ToHttpDate(t time.Time) string {
	return t.UTC().Format(imfDateLayout)
}

const imfDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

func imfDate(dateStr string) (time.Time, error) {
	// §     Recipients of timestamp values are encouraged to be robust in parsing
	// §     timestamps unless otherwise restricted by the field definition.
	return time.Parse(imfDateLayout, normalizeDateStr(dateStr))
}

func obsDate(dateStr string) (time.Time, error) {
	str := normalizeDateStr(dateStr)
	if date, err := time.Parse(time.RFC850, str); err == nil {
		return date, err
	}
	return time.Parse(time.ANSIC, str)
}

// normalizeDateStr fixes up the zone abbreviation, which is matched case-insensitively.
func normalizeDateStr(dateStr string) string {
	str := strings.TrimSpace(dateStr)
	if i := strings.LastIndex(str, " "); i != -1 && strings.EqualFold(str[i+1:], "GMT") {
		str = str[:i] + " GMT"
	}
	return str
}
