package weather

import "time"

func (s *ReadingService) SetClock(now func() time.Time) {
	s.now = now
}
