package session

import "time"

type State string

const (
	Unknown      State = "unknown"
	Unavailable  State = "unavailable"
	Downloadable State = "downloadable"
	Downloading  State = "downloading"
	Preparing    State = "preparing"
	Ready        State = "ready"
	Failed       State = "failed"
)

var allStates = []string{
	string(Unknown), string(Unavailable), string(Downloadable), string(Downloading),
	string(Preparing), string(Ready), string(Failed),
}

// isValidTransition reports whether the manager may move from one state to
// another. Reset is the only way out of Unavailable and bypasses this check.
func isValidTransition(from, to State) bool {
	switch from {
	case Unknown:
		return to == Unavailable || to == Downloadable || to == Ready
	case Downloadable:
		return to == Downloading || to == Ready
	case Downloading:
		return to == Downloading || to == Preparing || to == Failed
	case Preparing:
		return to == Ready || to == Failed
	case Ready:
		return to == Failed
	case Failed:
		return to == Downloadable || to == Downloading || to == Ready
	default:
		return false
	}
}

// DownloadAttempt describes one session creation. Progress is nil while the
// provider has not reported a ratio.
type DownloadAttempt struct {
	ID             string
	Number         int
	Download       bool
	StartedAt      time.Time
	LastProgressAt time.Time
	Progress       *float64
	Deadline       time.Time
}

// Clone returns a copy that shares no memory with a.
func (a DownloadAttempt) Clone() DownloadAttempt {
	if a.Progress != nil {
		p := *a.Progress
		a.Progress = &p
	}
	return a
}
