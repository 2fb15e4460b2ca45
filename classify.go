package xmlship

import "net/http"

// RetryAction defines how a failed delivery attempt should be handled.
type RetryAction int

const (
	// RetryActionRetry schedules another attempt after a backoff wait.
	RetryActionRetry RetryAction = iota
	// RetryActionStop returns the outcome without further attempts.
	RetryActionStop
)

// RetryClassifier decides whether a failed attempt is worth retrying.
// It is never consulted for successful outcomes.
type RetryClassifier func(outcome DeliveryOutcome) RetryAction

// defaultRetryClassifier retries server errors and transport failures and
// stops on everything else, including all 4xx client errors.
func defaultRetryClassifier(outcome DeliveryOutcome) RetryAction {
	if outcome.StatusCode == StatusTransportFailure {
		return RetryActionRetry
	}
	if outcome.StatusCode >= http.StatusInternalServerError && outcome.StatusCode < 600 {
		return RetryActionRetry
	}

	return RetryActionStop
}
