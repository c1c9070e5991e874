package kpi

import (
	"math"
	"sort"
	"time"
)

type dayValue struct {
	day   time.Time
	value float64
}

// daily groups items by UTC calendar day and sums value, sorted by day.
func daily[T any](items []T, date func(T) time.Time, value func(T) float64) []dayValue {
	sums := make(map[time.Time]float64)
	for _, it := range items {
		d := date(it)
		if d.IsZero() {
			continue
		}
		sums[dayOf(d)] += value(it)
	}
	out := make([]dayValue, 0, len(sums))
	for d, v := range sums {
		out = append(out, dayValue{day: d, value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].day.Before(out[j].day) })
	return out
}

func dayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// lastTwo returns the latest and the previous day values.
func lastTwo(days []dayValue) (cur, prev float64, ok bool) {
	if len(days) < 2 {
		return 0, 0, false
	}
	return days[len(days)-1].value, days[len(days)-2].value, true
}

func pctChange(cur, prev float64) float64 {
	if prev == 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Round(v*100) / 100
}

func one[T any](T) float64 { return 1 }
