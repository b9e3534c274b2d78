package common

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

const (
	USDDecimals  = 2 // cents
	AmountScale  = 6 // amounts are held in micro-dollars, same precision as USDC
	microPerCent = 10_000
)

// SanitizeAmountInput drops everything except digits and '.'.
// Example: SanitizeAmountInput("$1,250.5x") = "1250.5"
func SanitizeAmountInput(value string) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// USDToMicro converts a decimal USD string to micro-dollars without float precision loss.
// Digits beyond the sixth decimal are truncated.
func USDToMicro(usd string) (uint64, error) {
	return parseWithDecimals(usd, AmountScale)
}

// ErrAmountOverflow is returned when a well-formed amount does not fit in micro-dollars.
var ErrAmountOverflow = errors.New("amount out of range")

// NumericMicro mirrors Number(v) || 0: malformed input counts as zero, while amounts too
// large to represent saturate at math.MaxUint64 so they still read as out of range.
func NumericMicro(value string) uint64 {
	if value == "" {
		return 0
	}
	micro, err := USDToMicro(value)
	if errors.Is(err, ErrAmountOverflow) {
		return math.MaxUint64
	}
	if err != nil {
		return 0
	}
	return micro
}

// RoundMicroToCents rounds micro-dollars to whole cents, half up.
func RoundMicroToCents(micro uint64) uint64 {
	cents := micro / microPerCent
	if micro%microPerCent >= microPerCent/2 {
		cents++
	}
	return cents
}

// CentsToMicro converts whole cents to micro-dollars.
func CentsToMicro(cents uint64) uint64 {
	return cents * microPerCent
}

// PercentOfMicroInCents returns round(amount * percent / 100, 2) in cents, half up.
// percent is given with two implied decimals (basis points), e.g. 100 = 1.00%.
func PercentOfMicroInCents(micro uint64, basisPoints uint64) uint64 {
	// cents = micro * bps / 1e8; rounded half up
	n := new(big.Int).SetUint64(micro)
	n.Mul(n, new(big.Int).SetUint64(basisPoints))
	n.Add(n, big.NewInt(50_000_000))
	n.Quo(n, big.NewInt(100_000_000))
	if !n.IsUint64() {
		return ^uint64(0)
	}
	return n.Uint64()
}

// PercentToBasisPoints converts a percentage like 1.0 or "0.75" to basis points.
func PercentToBasisPoints(percent string) (uint64, error) {
	return parseWithDecimals(percent, 2)
}

// BasisPointsToPercent renders basis points as a short percentage: 100 -> "1", 75 -> "0.75".
func BasisPointsToPercent(basisPoints uint64) string {
	s := formatWithDecimals(basisPoints, 2)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FormatUSDDisplay renders cents as US currency, e.g. 123450 -> "$1,234.50".
func FormatUSDDisplay(cents uint64) string {
	s := formatWithDecimals(cents, USDDecimals)
	pos := strings.IndexByte(s, '.')
	return "$" + groupThousands(s[:pos]) + s[pos:]
}

// FormatUSDInput formats a sanitized amount for an input field: thousands separators on the
// integer part and at most two decimals. Example: "1234.567" -> "1,234.56"
func FormatUSDInput(value string) string {
	if value == "" {
		return ""
	}
	numeric := SanitizeAmountInput(value)
	parts := strings.Split(numeric, ".")

	integerPart := parts[0]
	if len(integerPart) > 3 {
		integerPart = groupThousands(integerPart)
	}

	if len(parts) > 1 {
		decimalPart := parts[1]
		if len(decimalPart) > 2 {
			decimalPart = decimalPart[:2]
		}
		return integerPart + "." + decimalPart
	}
	return integerPart
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// formatWithDecimals converts integer to decimal string by inserting decimal point
// Example: formatWithDecimals(24750, 2) = "247.50"
func formatWithDecimals(value uint64, decimals int) string {
	s := strconv.FormatUint(value, 10)

	for len(s) <= decimals {
		s = "0" + s
	}

	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}

// parseWithDecimals converts decimal string to integer by removing decimal point
// Example: parseWithDecimals("247.5", 2) = 24750
func parseWithDecimals(s string, decimals int) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty string")
	}

	parts := strings.Split(s, ".")

	if len(parts) == 1 {
		n, err := parseDigits(parts[0])
		if err != nil {
			return 0, err
		}
		for i := 0; i < decimals; i++ {
			if n > math.MaxUint64/10 {
				return 0, fmt.Errorf("%s: %w", s, ErrAmountOverflow)
			}
			n *= 10
		}
		return n, nil
	}

	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid decimal format")
	}

	whole := parts[0]
	frac := parts[1]
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("invalid decimal format")
	}
	if whole == "" {
		whole = "0"
	}

	// Pad or truncate fractional part to exact decimals
	if len(frac) < decimals {
		frac += strings.Repeat("0", decimals-len(frac))
	} else if len(frac) > decimals {
		frac = frac[:decimals]
	}

	return parseDigits(whole + frac)
}

func parseDigits(digits string) (uint64, error) {
	n, err := strconv.ParseUint(digits, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%s: %w", digits, ErrAmountOverflow)
	}
	return n, err
}
