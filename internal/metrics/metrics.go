// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
type Recorder interface {
	// HTTP
	ObserveRequest(method, route string, status int, duration time.Duration)

	// Object writes, labelled by resource basename.
	IncObjectCreated(resource string)
	IncObjectUpdated(resource string)
	IncObjectDeleted(resource string)
	IncValidationFailed(resource string)

	// Schema generation
	IncSchemaCacheHit()
	IncSchemaCacheMiss()
	ObserveSchemaGeneration(duration time.Duration)
}
