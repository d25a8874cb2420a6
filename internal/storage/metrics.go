package storage

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// SimpleMetricsCollector accumulates storage operation metrics in
// memory. Good enough for one process and the /stats endpoint.
type SimpleMetricsCollector struct {
	mu      sync.RWMutex
	metrics []OperationMetric
}

// NewSimpleMetricsCollector creates an empty collector.
func NewSimpleMetricsCollector() *SimpleMetricsCollector {
	return &SimpleMetricsCollector{metrics: make([]OperationMetric, 0)}
}

// Record stores one operation metric.
func (s *SimpleMetricsCollector) Record(metric OperationMetric) {
	s.mu.Lock()
	s.metrics = append(s.metrics, metric)
	s.mu.Unlock()

	logger := log.With().
		Str("operation", metric.Operation).
		Str("backend", metric.Backend).
		Dur("duration", metric.Duration).
		Bool("success", metric.Success).
		Logger()
	if metric.Error != nil {
		logger = logger.With().Err(metric.Error).Logger()
	}
	logger.Debug().Msg("Storage operation recorded")
}

// OperationStats aggregates metrics for one operation type.
type OperationStats struct {
	Count        int           `json:"count"`
	SuccessCount int           `json:"success_count"`
	FailureCount int           `json:"failure_count"`
	MinDuration  time.Duration `json:"min_duration_ns"`
	MaxDuration  time.Duration `json:"max_duration_ns"`
	AvgDuration  time.Duration `json:"avg_duration_ns"`

	total time.Duration
}

// SuccessRate returns the success percentage for this operation.
func (o *OperationStats) SuccessRate() float64 {
	if o.Count == 0 {
		return 0
	}
	return float64(o.SuccessCount) / float64(o.Count) * 100
}

// Summary groups collected metrics by backend and operation.
func (s *SimpleMetricsCollector) Summary() map[string]map[string]*OperationStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byBackend := make(map[string]map[string]*OperationStats)
	for _, m := range s.metrics {
		if byBackend[m.Backend] == nil {
			byBackend[m.Backend] = make(map[string]*OperationStats)
		}
		stats := byBackend[m.Backend][m.Operation]
		if stats == nil {
			stats = &OperationStats{MinDuration: m.Duration, MaxDuration: m.Duration}
			byBackend[m.Backend][m.Operation] = stats
		}
		stats.Count++
		stats.total += m.Duration
		if m.Success {
			stats.SuccessCount++
		} else {
			stats.FailureCount++
		}
		if m.Duration < stats.MinDuration {
			stats.MinDuration = m.Duration
		}
		if m.Duration > stats.MaxDuration {
			stats.MaxDuration = m.Duration
		}
		stats.AvgDuration = stats.total / time.Duration(stats.Count)
	}
	return byBackend
}

// TotalOperations returns the number of recorded metrics.
func (s *SimpleMetricsCollector) TotalOperations() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.metrics)
}

// Clear discards all collected metrics.
func (s *SimpleMetricsCollector) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = s.metrics[:0]
}
