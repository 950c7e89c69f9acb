package entities

// TimerStatus is the traffic-light colour of the countdown
type TimerStatus string

const (
	TimerStatusGreen    TimerStatus = "green"
	TimerStatusYellow   TimerStatus = "yellow"
	TimerStatusRed      TimerStatus = "red"
	TimerStatusOvertime TimerStatus = "overtime"
)

// Label returns the human label shown next to the countdown
func (s TimerStatus) Label() string {
	switch s {
	case TimerStatusYellow:
		return "Warning"
	case TimerStatusRed:
		return "Wrap up"
	case TimerStatusOvertime:
		return "Overtime"
	default:
		return "On track"
	}
}

// TimerReading is a snapshot of the timer engine for one elapsed value
type TimerReading struct {
	Status           TimerStatus   `json:"status"`
	Label            string        `json:"label"`
	ElapsedSeconds   int           `json:"elapsedSeconds"`
	RemainingSeconds int           `json:"remainingSeconds"`
	Display          string        `json:"display"`
	Running          bool          `json:"running"`
	Settings         TimerSettings `json:"settings"`
}
