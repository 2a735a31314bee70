package dict

import (
	"errors"
	"strconv"
)

// ErrBadDate reports an unparseable or invalid calendar date.
var ErrBadDate = errors.New("invalid date")

// OrdinalDate converts a YYYYMMDD or YYMMDD date string to an ANSI day
// ordinal with base 1601-01-01 == 1. Two-digit years 00-30 are read as
// 20YY, otherwise 19YY. Day-of-month validity is checked, including leap
// years; only the first 8 characters of a long string are considered.
func OrdinalDate(datestring string) (int, error) {
	var year, month, day int
	var err error
	if len(datestring) > 7 {
		year, err = atoi(datestring[:4])
		if err == nil {
			month, err = atoi(datestring[4:6])
		}
		if err == nil {
			day, err = atoi(datestring[6:8])
		}
	} else if len(datestring) >= 6 {
		year, err = atoi(datestring[:2])
		if year <= 30 {
			year += 2000
		} else {
			year += 1900
		}
		if err == nil {
			month, err = atoi(datestring[2:4])
		}
		if err == nil {
			day, err = atoi(datestring[4:6])
		}
	} else {
		return 0, ErrBadDate
	}
	if err != nil {
		return 0, ErrBadDate
	}

	if day <= 0 || month < 1 || month > 12 {
		return 0, ErrBadDate
	}
	switch month {
	case 2:
		leap := year%4 == 0 && (year%100 != 0 || year%400 == 0)
		if (leap && day > 29) || (!leap && day > 28) {
			return 0, ErrBadDate
		}
	case 4, 6, 9, 11:
		if day > 30 {
			return 0, ErrBadDate
		}
	default:
		if day > 31 {
			return 0, ErrBadDate
		}
	}

	// Julian day number, then shift to the ANSI base
	adj := 0
	if month < 3 {
		adj = 1
	}
	yr := year + 4800 - adj
	mo := month + 12*adj - 3
	ordate := day + (153*mo+2)/5 + 365*yr
	ordate += yr/4 - yr/100 + yr/400 - 32045
	ordate -= 2305813
	return ordate, nil
}

func atoi(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrBadDate
	}
	return n, nil
}
