// Package stats summarizes click runs recorded against the test page.
package stats

import (
	"math"
	"sort"
	"time"
)

// OutlierSigma is the distance from the mean, in standard deviations, past
// which a run counts as an outlier.
const OutlierSigma = 3

type Summary struct {
	Count        int
	Total        int64
	Best         int64
	Lowest       int64
	Mean         float64
	Median       float64
	StdDev       float64
	P10          float64
	P90          float64
	ErrorMargin  float64 // coefficient of variation, percent
	Perfect      int64   // expected clicks per run, 0 if unknown
	PerfectCount int
	Outliers     []int64
}

// PerfectRate is the share of runs that hit the expected click count.
func (s Summary) PerfectRate() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.PerfectCount) / float64(s.Count)
}

type DayData struct {
	Date     time.Time
	Sessions int64
	Clicks   int64
}

// Summarize computes run statistics. perfect is the click count a flawless
// run produces (duration × rate); pass 0 to skip the perfect-run tally.
func Summarize(samples []int64, perfect int64) Summary {
	s := Summary{Count: len(samples), Perfect: perfect}
	if len(samples) == 0 {
		return s
	}

	sorted := make([]int64, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	s.Lowest = sorted[0]
	s.Best = sorted[len(sorted)-1]
	for _, v := range samples {
		s.Total += v
		if perfect > 0 && v == perfect {
			s.PerfectCount++
		}
	}
	s.Mean = float64(s.Total) / float64(s.Count)

	var sq float64
	for _, v := range samples {
		d := float64(v) - s.Mean
		sq += d * d
	}
	s.StdDev = math.Sqrt(sq / float64(s.Count))
	if s.Mean != 0 {
		s.ErrorMargin = s.StdDev / s.Mean * 100
	}

	s.Median = Percentile(sorted, 0.5)
	s.P10 = Percentile(sorted, 0.1)
	s.P90 = Percentile(sorted, 0.9)

	if s.StdDev > 0 {
		for _, v := range samples {
			if math.Abs(float64(v)-s.Mean) > OutlierSigma*s.StdDev {
				s.Outliers = append(s.Outliers, v)
			}
		}
	}
	return s
}

// Percentile interpolates linearly between the closest ranks of an
// ascending slice.
func Percentile(sorted []int64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if p <= 0 {
		return float64(sorted[0])
	}
	if p >= 1 {
		return float64(sorted[len(sorted)-1])
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[hi]-sorted[lo])
}

// AchievedRate returns clicks per second over d.
func AchievedRate(clicks int64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(clicks) / d.Seconds()
}

// PerfectClicks is the click count a run of d at rate clicks/s produces.
func PerfectClicks(rate float64, d time.Duration) int64 {
	if rate <= 0 || d <= 0 {
		return 0
	}
	return int64(math.Round(rate * d.Seconds()))
}

func CalculateDailyAverage(days []DayData) float64 {
	if len(days) == 0 {
		return 0
	}
	var total int64
	for _, d := range days {
		total += d.Clicks
	}
	return float64(total) / float64(len(days))
}

// FindBusiestDay returns the index of the day with the most clicks; the
// first wins on ties.
func FindBusiestDay(days []DayData) (index int, clicks int64) {
	for i, d := range days {
		if d.Clicks > clicks {
			index = i
			clicks = d.Clicks
		}
	}
	return
}

func FormatClickCount(count int64) string {
	if count >= 1000000 {
		return formatFloat(float64(count)/1000000) + "M"
	}
	if count >= 1000 {
		return formatFloat(float64(count)/1000) + "K"
	}
	return formatInt(count)
}

func formatFloat(f float64) string {
	intPart := int64(f)
	if f == float64(intPart) {
		return formatInt(intPart)
	}
	// Get first decimal digit
	decimalPart := int((f - float64(intPart)) * 10)
	return formatInt(intPart) + "." + string(byte('0'+decimalPart))
}

func formatInt(i int64) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var result []byte
	for i > 0 {
		result = append([]byte{byte('0' + i%10)}, result...)
		i /= 10
	}
	if neg {
		result = append([]byte{'-'}, result...)
	}
	return string(result)
}
