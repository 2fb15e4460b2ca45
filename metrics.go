package xmlship

import "time"

// Metrics captures delivery-level telemetry.
type Metrics interface {
	// ObserveAttemptDuration records the time spent on one delivery attempt.
	ObserveAttemptDuration(duration time.Duration)
	// AddAttempts increments the count of delivery attempts.
	AddAttempts(count int)
	// AddRetries increments the count of retried attempts.
	AddRetries(count int)
	// AddDelivered increments the count of successful deliveries.
	AddDelivered(count int)
	// AddFailed increments the count of deliveries that gave up.
	AddFailed(count int)
}

// NopMetrics is a no-op metrics recorder.
type NopMetrics struct{}

// ObserveAttemptDuration implements Metrics.
func (NopMetrics) ObserveAttemptDuration(time.Duration) {}

// AddAttempts implements Metrics.
func (NopMetrics) AddAttempts(int) {}

// AddRetries implements Metrics.
func (NopMetrics) AddRetries(int) {}

// AddDelivered implements Metrics.
func (NopMetrics) AddDelivered(int) {}

// AddFailed implements Metrics.
func (NopMetrics) AddFailed(int) {}
