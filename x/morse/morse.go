// Package morse converts numeric fault codes into the dot/dash symbol
// sequences the annunciator plays on the status LED.
package morse

import "errors"

// ErrBufferTooSmall is returned when the destination cannot hold the
// encoded sequence.
var ErrBufferTooSmall = errors.New("morse: buffer too small")

// Symbols used in an encoded sequence.
const (
	Dot  = '.'
	Dash = '-'
	Gap  = ' '
)

// digits maps a decimal digit to its fixed five-symbol pattern.
var digits = [10]string{
	"-----", // 0
	".----", // 1
	"..---", // 2
	"...--", // 3
	"....-", // 4
	".....", // 5
	"-....", // 6
	"--...", // 7
	"---..", // 8
	"----.", // 9
}

// EncodeNumber writes the Morse representation of number into dst, most
// significant digit first, with a single gap between digit groups, and
// returns the encoded length.
//
// A digit is emitted unless it is a leading zero; the final divisor always
// forces emission, so trailing zeros are preserved (100 encodes as three
// digit groups) and every number yields at least one digit.
func EncodeNumber(dst []byte, number uint16) (int, error) {
	idx := 0
	first := true

	// 10000 is the largest divisor needed for a uint16 (65535).
	for divisor := uint16(10000); divisor > 0; divisor /= 10 {
		digit := (number / divisor) % 10
		if digit == 0 && first && divisor != 1 {
			continue
		}
		if !first {
			if idx >= len(dst) {
				return 0, ErrBufferTooSmall
			}
			dst[idx] = Gap
			idx++
		}
		pattern := digits[digit]
		if idx+len(pattern) > len(dst) {
			return 0, ErrBufferTooSmall
		}
		idx += copy(dst[idx:], pattern)
		first = false
	}

	return idx, nil
}
