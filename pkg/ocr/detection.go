package ocr

import (
	"strconv"
	"strings"
)

// MinConfidence is the default cut-off: fragments must score strictly above it.
const MinConfidence = 0.5

// Detection is one recognized text fragment. Confidence is in [0,1].
type Detection struct {
	Text       string
	Confidence float64
}

// Digits concatenates, in order, the text of fragments scoring above
// minConf and strips everything that is not a decimal digit.
func Digits(ds []Detection, minConf float64) string {
	var sb strings.Builder
	for _, d := range ds {
		if d.Confidence > minConf {
			sb.WriteString(d.Text)
		}
	}
	return onlyDigits(sb.String())
}

// NumberFromDetections parses Digits as a base-10 integer. ok is false when
// no digit survives filtering or the value overflows int.
func NumberFromDetections(ds []Detection, minConf float64) (n int, ok bool) {
	digits := Digits(ds, minConf)
	if digits == "" {
		return 0, false
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return v, true
}

// onlyDigits extracts decimal digits from a string.
func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
