package resilience

import "time"

// Settings tunes a circuit breaker. Zero thresholds fall back to 5 failures and 1 half-open request.
type Settings struct {
	Name             string
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
	SuccessThreshold uint32
}

// BuildSettings converts second-based knobs, defaulting each non-positive value
func BuildSettings(name string, intervalSeconds, timeoutSeconds, failureThreshold, successThreshold int) Settings {
	return Settings{
		Name:             name,
		Interval:         secondsOr(intervalSeconds, time.Minute),
		Timeout:          secondsOr(timeoutSeconds, 30*time.Second),
		FailureThreshold: countOr(failureThreshold, 5),
		SuccessThreshold: countOr(successThreshold, 1),
	}
}

func secondsOr(n int, def time.Duration) time.Duration {
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}

func countOr(n int, def uint32) uint32 {
	if n <= 0 {
		return def
	}
	return uint32(n)
}
