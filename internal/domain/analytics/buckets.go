package analytics

import (
	"fmt"
	"math"
	"time"
)

type Granularity string

const (
	GranularityHour Granularity = "hour"
	GranularityDay  Granularity = "day"
)

// SeriesKind distinguishes count series, where a missing bucket means zero,
// from average series, where a missing bucket means "no data" (null).
type SeriesKind int

const (
	SeriesCount SeriesKind = iota
	SeriesAverageMillis
)

// Row is one sparse aggregate row produced by a grouped query.
type Row struct {
	Bucket string  `gorm:"column:bucket"`
	Value  float64 `gorm:"column:value"`
}

// Bucket is one dense series entry. Value is nil only for average series
// buckets with no underlying rows; measured zeros stay as zeros.
type Bucket struct {
	Key   string   `json:"key"`
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

// Fill expands sparse aggregate rows into a dense, ordered, gap-free series.
//
// Day granularity emits one bucket per calendar day in [start, end],
// inclusive of both ends. Hour granularity emits the 24 hour-of-day buckets
// 00:00..23:00 regardless of the range, matching grouped queries that fold a
// trailing window onto hours of the day.
func Fill(rows []Row, start, end time.Time, granularity Granularity, kind SeriesKind) []Bucket {
	byKey := make(map[string]float64, len(rows))
	for _, row := range rows {
		byKey[row.Bucket] = row.Value
	}

	switch granularity {
	case GranularityHour:
		buckets := make([]Bucket, 0, 24)
		for h := 0; h < 24; h++ {
			key := fmt.Sprintf("%02d:00", h)
			buckets = append(buckets, makeBucket(key, key, byKey, kind))
		}
		return buckets

	case GranularityDay:
		first := truncateToDay(start)
		last := truncateToDay(end)
		buckets := make([]Bucket, 0, int(last.Sub(first).Hours()/24)+1)
		for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
			key := day.Format("2006-01-02")
			label := day.Format("Jan 2")
			buckets = append(buckets, makeBucket(key, label, byKey, kind))
		}
		return buckets
	}

	return nil
}

func makeBucket(key, label string, byKey map[string]float64, kind SeriesKind) Bucket {
	raw, ok := byKey[key]
	if !ok {
		if kind == SeriesCount {
			zero := 0.0
			return Bucket{Key: key, Label: label, Value: &zero}
		}
		return Bucket{Key: key, Label: label, Value: nil}
	}

	value := raw
	if kind == SeriesAverageMillis {
		// Averages are stored in milliseconds; charts show whole seconds.
		value = math.Round(raw / 1000)
	}
	return Bucket{Key: key, Label: label, Value: &value}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
