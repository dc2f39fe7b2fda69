package models

import "time"

// AnalyzerResult wraps the typed output of one analyzer run. Name and
// Version are stable identifiers consumers can branch on.
type AnalyzerResult[T any] struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	Data            T      `json:"data"`
}

// NewAnalyzerResult stamps data with the analyzer identity and the time elapsed since start.
func NewAnalyzerResult[T any](name, version string, start time.Time, data T) AnalyzerResult[T] {
	return AnalyzerResult[T]{
		Name:            name,
		Version:         version,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
		Data:            data,
	}
}
