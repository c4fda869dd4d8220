package monitor

import "time"

type Status struct {
	Checks    map[string]bool `json:"checks"`
	LastCheck time.Time       `json:"last_check"`
}

// Healthy is true when at least one check ran and all of them passed.
func (s Status) Healthy() bool {
	if len(s.Checks) == 0 {
		return false
	}
	for _, ok := range s.Checks {
		if !ok {
			return false
		}
	}
	return true
}
