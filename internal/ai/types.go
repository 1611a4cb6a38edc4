package ai

// Availability is the state an external capability reports for itself.
type Availability string

const (
	Unavailable  Availability = "unavailable"
	Downloadable Availability = "downloadable"
	Downloading  Availability = "downloading"
	Available    Availability = "available"
)

// SessionOptions is passed unchanged to every availability and create call
// for a given session manager.
type SessionOptions struct {
	ExpectedInputLanguages  []string
	ExpectedOutputLanguages []string
	SystemPrompt            string
}

type SummarizerConfig struct {
	Type           string // tldr, key-points, teaser, headline
	Format         string // plain-text, markdown
	Length         string // short, medium, long
	OutputLanguage string
	SharedContext  string
}

// Monitor receives download signals for a session creation. Callbacks may be
// invoked from any goroutine, and any of them may be nil.
type Monitor struct {
	// OnProgress receives a ratio in [0,1], or nil when the total is unknown.
	OnProgress func(ratio *float64)
	OnComplete func()
	OnFail     func(err error)
}

func (m Monitor) Progress(ratio *float64) {
	if m.OnProgress != nil {
		m.OnProgress(ratio)
	}
}

func (m Monitor) Complete() {
	if m.OnComplete != nil {
		m.OnComplete()
	}
}

func (m Monitor) Fail(err error) {
	if m.OnFail != nil {
		m.OnFail(err)
	}
}

// Status is a progress update for display.
type Status struct {
	Stage   string
	Message string
	Ratio   *float64
}

type StatusFunc func(Status)

// Emit calls f when it is non-nil.
func (f StatusFunc) Emit(stage, message string, ratio *float64) {
	if f != nil {
		f(Status{Stage: stage, Message: message, Ratio: ratio})
	}
}

// Ratio returns a pointer to r, for building Status values inline.
func Ratio(r float64) *float64 {
	return &r
}
