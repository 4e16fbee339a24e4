package service

import "time"

// nowUTC is the single time source for business rules (deadlines, checked
// state). Naive client timestamps are normalized to UTC before comparison.
func nowUTC() time.Time {
	return time.Now().UTC()
}
