package models

// Outcome is the tri-state result of one exchange with the collector.
//
// It deliberately is not a bool: the polling loop needs to distinguish an
// explicit "stop streaming" from a failed or unreadable exchange when
// choosing its next interval.
type Outcome int

const (
	// OutcomeIndeterminate means no definitive answer was obtained
	// (transport failure, malformed response, missing subscribed header).
	OutcomeIndeterminate Outcome = iota

	// OutcomeSubscribed means the collector asked to keep streaming.
	OutcomeSubscribed

	// OutcomeUnsubscribed means the collector explicitly declined the stream.
	OutcomeUnsubscribed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSubscribed:
		return "subscribed"
	case OutcomeUnsubscribed:
		return "unsubscribed"
	default:
		return "indeterminate"
	}
}
