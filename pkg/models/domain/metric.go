package domain

import (
	"math"
	"strconv"
)

// NotAvailable is rendered in place of values that cannot be computed, such as
// a percentage of a zero total.
const NotAvailable = "N/A"

// Number is a computed value that may be undefined. The zero value is N/A.
type Number struct {
	Value float64
	Valid bool
}

func Num(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Number{Value: v, Valid: true}
}

// NA is the undefined Number.
var NA = Number{}

func (n Number) String() string {
	if !n.Valid {
		return NotAvailable
	}
	return strconv.FormatFloat(math.Round(n.Value*100)/100, 'f', -1, 64)
}

// DerivedMetric is a value computed from one or more snapshots: a share, a
// delta or a classification.
type DerivedMetric struct {
	Key   string // groundwater.stage_of_extraction
	Label string
	Value Number
	Unit  string
	Class string // classification label, empty when unclassified
	Rank  int    // position of Class in its threshold table, grows with Value
}
