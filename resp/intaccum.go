package resp

import "math"

// intAccumulator parses a signed decimal integer one byte at a time,
// persisting across Parse calls the same way the rest of the parser's
// registers do. Overflow is latched as digits arrive and reported through
// result, so the driver rejects an overflowing length before any range
// check runs -- an overflowed negative must not slip into the
// "negative multibulk commits an empty command" path.
type intAccumulator struct {
	digits   int
	seenSign bool
	neg      bool
	value    int64
	overflow bool
}

func (a *intAccumulator) reset() {
	*a = intAccumulator{}
}

// feed consumes one byte of the number. It reports whether the byte
// belonged to the number (a leading sign or a digit); a false return
// means the caller has hit a malformed terminator.
func (a *intAccumulator) feed(b byte) bool {
	if b == '-' || b == '+' {
		if a.seenSign || a.digits > 0 {
			return false
		}
		a.seenSign = true
		a.neg = b == '-'
		return true
	}
	if b < '0' || b > '9' {
		return false
	}
	d := int64(b - '0')
	if a.value > (math.MaxInt64-d)/10 {
		a.overflow = true
	} else {
		a.value = a.value*10 + d
	}
	a.digits++
	return true
}

// result returns the accumulated value. ok is false when no digit was seen
// (a bare sign, or nothing at all, is not a valid number) or when the
// digits overflowed int64.
func (a *intAccumulator) result() (int64, bool) {
	if a.digits == 0 || a.overflow {
		return 0, false
	}
	if a.neg {
		return -a.value, true
	}
	return a.value, true
}
