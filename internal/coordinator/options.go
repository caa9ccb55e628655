package coordinator

// Option configures a Swarm. Use With* functions to create Options.
type Option func(*swarmOptions)

// swarmOptions holds all optional configuration.
type swarmOptions struct {
	maxInFlight int
	eventBuffer int
	recorder    TraceRecorder
}

// defaultOptions returns the baseline option values.
func defaultOptions() swarmOptions {
	return swarmOptions{
		maxInFlight: 4,
		eventBuffer: 100,
	}
}

// WithMaxInFlight sets the maximum number of concurrently running
// executors. Values below 1 are ignored.
func WithMaxInFlight(n int) Option {
	return func(o *swarmOptions) {
		if n >= 1 {
			o.maxInFlight = n
		}
	}
}

// WithEventBuffer sets the event channel buffer size.
func WithEventBuffer(n int) Option {
	return func(o *swarmOptions) {
		if n >= 1 {
			o.eventBuffer = n
		}
	}
}

// WithRecorder sets the audit trace recorder. If nil, no traces are
// written.
func WithRecorder(r TraceRecorder) Option {
	return func(o *swarmOptions) { o.recorder = r }
}
