package metrics

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/de-tools/agri-atlas/pkg/models/domain"
)

var titleCaser = cases.Title(language.English)

// FormatCompact abbreviates large values: 825000 -> "825K", 1250000 -> "1.25M".
func FormatCompact(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return trimZeros(fmt.Sprintf("%.2f", v/1_000_000)) + "M"
	case abs >= 1_000:
		return trimZeros(fmt.Sprintf("%.1f", v/1_000)) + "K"
	}
	return trimZeros(fmt.Sprintf("%.2f", v))
}

func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// FormatValue renders a table cell as text. Floats are rounded to two
// decimals without trailing zeros; N/A numbers render as domain.NotAvailable.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return domain.Num(val).String()
	case domain.Number:
		return val.String()
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}

// Title turns a dataset key such as "semi_medium" into "Semi Medium".
func Title(key string) string {
	return titleCaser.String(strings.ReplaceAll(strings.TrimSpace(key), "_", " "))
}
