package scanner

import "time"

// SetClock replaces the wall clock used to capture the scan start time.
func (s *Scanner) SetClock(now func() time.Time) {
	s.now = now
}
