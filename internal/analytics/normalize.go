package analytics

import (
	"encoding/json"
	"time"
)

// Point is one chart/table-ready record aligned across the engine's column
// arrays.
type Point struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
	Score     float64 `json:"score"`
	IsAnomaly bool    `json:"isAnomaly"`
}

// Summary is derived from the normalized points for the metrics row.
type Summary struct {
	TotalPoints    int     `json:"totalPoints"`
	TotalAnomalies int     `json:"totalAnomalies"`
	AnomalyPercent float64 `json:"anomalyPercent"`
}

// columns mirrors the engine's result payload. Every array may be absent,
// null, shorter than the others, or hold null elements; pointers keep those
// cases representable without failing the decode.
type columns struct {
	Timestamp    []*string  `json:"timestamp"`
	Value        []*float64 `json:"value"`
	AnomalyScore []*float64 `json:"anomaly_score"`
	IsAnomaly    []*float64 `json:"is_anomaly"`
}

// Normalize converts a raw result payload into aligned points. The is_anomaly
// column drives the record count; missing timestamps default to now, missing
// numerics to 0, and the isolation-forest sentinel -1 marks an anomaly
// (1 is normal). A payload that cannot be decoded yields an empty slice,
// never an error.
func Normalize(raw json.RawMessage) []Point {
	if len(raw) == 0 {
		return []Point{}
	}
	var cols columns
	if err := json.Unmarshal(raw, &cols); err != nil {
		return []Point{}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	points := make([]Point, 0, len(cols.IsAnomaly))
	for i := range cols.IsAnomaly {
		p := Point{Timestamp: now}
		if i < len(cols.Timestamp) && cols.Timestamp[i] != nil && *cols.Timestamp[i] != "" {
			p.Timestamp = *cols.Timestamp[i]
		}
		if i < len(cols.Value) && cols.Value[i] != nil {
			p.Value = *cols.Value[i]
		}
		if i < len(cols.AnomalyScore) && cols.AnomalyScore[i] != nil {
			p.Score = *cols.AnomalyScore[i]
		}
		if cols.IsAnomaly[i] != nil {
			p.IsAnomaly = *cols.IsAnomaly[i] == -1
		}
		points = append(points, p)
	}
	return points
}

// Summarize computes the headline metrics over normalized points.
func Summarize(points []Point) Summary {
	s := Summary{TotalPoints: len(points)}
	for _, p := range points {
		if p.IsAnomaly {
			s.TotalAnomalies++
		}
	}
	if s.TotalPoints > 0 {
		s.AnomalyPercent = float64(s.TotalAnomalies) / float64(s.TotalPoints) * 100
	}
	return s
}
