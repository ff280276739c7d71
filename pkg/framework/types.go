package framework

import (
	"context"
	"time"
)

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a long-running task of the flight controller,
// e.g. the link receive task or a ticking Loop.
type Runnable interface {
	Run(context.Context) error
}

// Message is posted into a Loop and consumed by its Controllers
// during the next iteration.
type Message interface {
	// NewMessage creates an empty message.
	NewMessage() Message
}

// Controller is invoked once per Loop iteration.
type Controller interface {
	Control(ControlContext) error
}

// TimeSource provides the time of the current tick.
type TimeSource interface {
	Time() time.Time
}

// ControlContext provides the context of current tick.
type ControlContext interface {
	TimeSource
	// Context retrieves context.Context.
	Context() context.Context
	// PriorityLevel gets the priority level being executed.
	PriorityLevel() int
	// ProcessMessages hands every pending message of this tick to fn.
	// Messages for which fn returns true are removed, the others stay
	// visible to controllers at lower priority levels.
	ProcessMessages(fn func(Message) bool)

	LoopControl
}

// LoopControl exposes access to the running loop.
type LoopControl interface {
	// PostMessage enqueues the message for the next iteration.
	PostMessage(Message)
	// TriggerNext schedules the next iteration to be executed
	// immediately instead of waiting for the next tick.
	TriggerNext()
}

// PriorityLevels is the total levels of priorities.
const PriorityLevels int = 8

// Predefined priority levels. Controllers at a lower level run first
// within one tick.
const (
	PrLvTop    int = 0
	PrLvHigh   int = 2
	PrLvNormal int = 4
	PrLvLow    int = 6
	PrLvIdle   int = PriorityLevels - 1

	// PrLvPower is where the battery state machine samples and transitions.
	PrLvPower = PrLvHigh
	// PrLvReport is where telemetry is encoded and handed to the link.
	PrLvReport = PrLvNormal
	// PrLvDiag is for periodic diagnostics.
	PrLvDiag = PrLvLow
)

// ControlFunc defines the func form of Controller.
type ControlFunc func(ControlContext) error

// Control implements Controller.
func (f ControlFunc) Control(ctx ControlContext) error {
	return f(ctx)
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}
