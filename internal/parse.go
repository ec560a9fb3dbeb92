package internal

import (
	"strconv"

	"github.com/ezrec/novir/translate"
)

var f = translate.From

// ErrParseNumber is returned for text that is not a byte in the requested base.
type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a valid byte", string(err))
}

// ParseByte parses a decimal byte, or a hexadecimal byte if hex is set.
func ParseByte(text string, hex bool) (value byte, err error) {
	base := 10
	if hex {
		base = 16
	}

	v64, err := strconv.ParseUint(text, base, 8)
	if err != nil {
		err = ErrParseNumber(text)
		return
	}

	value = byte(v64)
	return
}
