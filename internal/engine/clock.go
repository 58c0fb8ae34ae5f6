package engine

// Clock is the simulated calendar position handed to every system on each
// tick. The helpers are pure; systems derive day/night and scheduling facts
// from the value without touching wall time.
type Clock struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// NewClock returns the canonical start of a simulation: day 1, 06:00.
func NewClock() Clock {
	return Clock{Day: 1, Hour: 6}
}

// Advance returns the clock moved forward by the given simulated minutes.
func (c Clock) Advance(minutes int) Clock {
	total := c.TotalMinutes() + minutes
	return Clock{
		Day:    total / (24 * 60),
		Hour:   (total / 60) % 24,
		Minute: total % 60,
	}
}

// TotalMinutes flattens the clock to minutes since day 0, 00:00.
func (c Clock) TotalMinutes() int {
	return c.Day*24*60 + c.Hour*60 + c.Minute
}

// IsNight reports whether the clock is in the 22:00-06:00 window.
func (c Clock) IsNight() bool {
	return c.Hour >= 22 || c.Hour < 6
}

// IsWorkHours reports whether the clock is in the 08:00-18:00 window.
func (c Clock) IsWorkHours() bool {
	return c.Hour >= 8 && c.Hour < 18
}

// DayOfWeek returns 0-6 with day 0 as a Monday.
func (c Clock) DayOfWeek() int {
	return c.Day % 7
}
