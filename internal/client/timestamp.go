package client

import (
	"time"

	"github.com/tidwall/gjson"
)

// microsecondThreshold separates microsecond-scale protocol timestamps from
// the second/millisecond-scale values used elsewhere.
const microsecondThreshold = 1e10

// normalizeTimestamp applies the one conversion rule every derived record
// shares: numeric values above the threshold are divided by 1000, anything
// numeric at or below it passes through. Missing or non-numeric input falls
// back to the current wall clock so event records always stay orderable.
func normalizeTimestamp(v gjson.Result) float64 {
	if v.Type == gjson.Number {
		return normalizeEpoch(v.Float())
	}
	return nowSeconds()
}

func normalizeEpoch(n float64) float64 {
	if n > microsecondThreshold {
		return n / 1000
	}
	return n
}

func nowSeconds() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
