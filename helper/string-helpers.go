package helper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/relloyd/biopipe/constants"
)

// GetStringFromInterface will convert interface{} value to a string.
// Optionally return Times in UTC. Nil values produce an empty string.
func GetStringFromInterface(input interface{}, useUTC bool) (retval string) {
	switch v := input.(type) {
	case nil:
		retval = ""
	case string:
		retval = v
	case []uint8: // drivers may return character data as bytes.
		retval = string(v)
	case int:
		retval = strconv.Itoa(v)
	case int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		retval = fmt.Sprintf("%d", v)
	case float32:
		retval = strconv.FormatFloat(float64(v), 'f', -1, 32) // use 'f' to avoid an exponent i.e. preserve all decimal points.
	case float64:
		retval = strconv.FormatFloat(v, 'f', -1, 64)
	case time.Time:
		if useUTC {
			retval = v.UTC().Format(constants.TimeFormatYearSecondsTZ)
		} else {
			retval = v.Format(constants.TimeFormatYearSecondsTZ)
		}
	case bool:
		retval = strconv.FormatBool(v)
	case fmt.Stringer:
		retval = v.String()
	default:
		retval = fmt.Sprint(v)
	}
	return
}

// GetStringFromInterfacePreserveTimeZone will convert interface{} value to a string.
// Times will be in local time.
func GetStringFromInterfacePreserveTimeZone(input interface{}) string {
	return GetStringFromInterface(input, false)
}

// InterfaceToString converts a row of driver values into strings suitable for CSV output.
func InterfaceToString(src []interface{}) []string {
	retval := make([]string, len(src))
	for i, v := range src {
		switch x := v.(type) {
		case nil:
			retval[i] = ""
		case float64:
			if x == float64(int64(x)) { // if we can treat this as an integer...
				retval[i] = strconv.FormatInt(int64(x), 10)
			} else {
				retval[i] = strconv.FormatFloat(x, 'f', -1, 64)
			}
		case time.Time:
			retval[i] = x.Format(time.RFC3339Nano)
		case []uint8: // some drivers return character data as bytes.
			retval[i] = string(x)
		default:
			retval[i] = fmt.Sprint(v)
		}
	}
	return retval
}

// ToLowerTrimmed returns a copy of s with each element lower cased and trimmed of spaces.
// A leading UTF-8 byte order mark on the first element is removed since CSV files saved by
// spreadsheet tools often carry one.
func ToLowerTrimmed(s []string) []string {
	retval := make([]string, len(s))
	for idx, v := range s {
		if idx == 0 {
			v = strings.TrimPrefix(v, "\ufeff")
		}
		retval[idx] = strings.ToLower(strings.TrimSpace(v))
	}
	return retval
}

// Split returns the parts of s either side of the first c.
// If c is not found, return s, "".
func Split(s string, c string) (string, string) {
	i := strings.Index(s, c)
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+len(c):]
}
