// Package metrics provides metrics recording for the form bot.
package metrics

// Recorder defines the interface for recording conversation metrics.
type Recorder interface {
	// IncEvent counts an inbound event by kind.
	IncEvent(kind string)
	// IncRejection counts a re-prompt or stale selection by reason.
	IncRejection(reason string)
	// IncSubmission counts a completed questionnaire.
	IncSubmission()
	// IncDelivery counts a reviewer delivery by kind (text, voice, video) and status.
	IncDelivery(kind, status string)
	// IncPromptFallback counts a prompt clip replaced by text.
	IncPromptFallback(key string)
	// SetActiveSessions reports the number of in-flight sessions.
	SetActiveSessions(n int)
}

// Delivery statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// NoopRecorder implements Recorder with no-op behavior for when metrics are disabled.
type NoopRecorder struct{}

// Nop returns a no-op metrics recorder that discards all metrics.
func Nop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncEvent(_ string)          {}
func (n *NoopRecorder) IncRejection(_ string)      {}
func (n *NoopRecorder) IncSubmission()             {}
func (n *NoopRecorder) IncDelivery(_, _ string)    {}
func (n *NoopRecorder) IncPromptFallback(_ string) {}
func (n *NoopRecorder) SetActiveSessions(_ int)    {}
