package format

import "strconv"

// HumanizeBytes converts a byte count into a human-readable string (e.g., "1.5 MB").
func HumanizeBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit && exp < 3; n /= unit {
		div *= unit
		exp++
	}
	var buf [20]byte
	frac := float64(b) / float64(div)
	s := strconv.AppendFloat(buf[:0], frac, 'f', 1, 64)
	suffix := []string{"KB", "MB", "GB", "TB"}[exp]
	return string(s) + " " + suffix
}

// Megabytes renders b as "12.34 MB" with two decimals.
func Megabytes(b int64) string {
	mb := float64(b) / (1024 * 1024)
	return strconv.FormatFloat(mb, 'f', 2, 64) + " MB"
}

// ReductionPercent returns (1 - compressed/original) * 100. A zero or
// negative original yields 0. Growth yields a negative value.
func ReductionPercent(original, compressed int64) float64 {
	if original <= 0 {
		return 0
	}
	return (1 - float64(compressed)/float64(original)) * 100
}

// Percent renders p with one decimal and a percent sign.
func Percent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}
