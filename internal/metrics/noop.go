package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {}
func (n *NoopRecorder) IncObjectCreated(resource string)                                      {}
func (n *NoopRecorder) IncObjectUpdated(resource string)                                      {}
func (n *NoopRecorder) IncObjectDeleted(resource string)                                      {}
func (n *NoopRecorder) IncValidationFailed(resource string)                                   {}
func (n *NoopRecorder) IncSchemaCacheHit()                                                     {}
func (n *NoopRecorder) IncSchemaCacheMiss()                                                    {}
func (n *NoopRecorder) ObserveSchemaGeneration(duration time.Duration)                         {}
