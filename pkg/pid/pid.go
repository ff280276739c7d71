package pid

import (
	"errors"
	"fmt"
	"sync"
)

// ErrInvalidAxis indicates an axis selector outside Roll..Yaw.
var ErrInvalidAxis = errors.New("invalid axis")

// Axis selects a rotation axis.
type Axis uint8

// Axes.
const (
	Roll Axis = iota
	Pitch
	Yaw
)

// NumAxes is the number of axes.
const NumAxes = 3

var axisNames = [NumAxes]string{"Roll", "Pitch", "Yaw"}

// IsValid tells whether a is one of Roll, Pitch, Yaw.
func (a Axis) IsValid() bool {
	return a < NumAxes
}

// String implements fmt.Stringer.
func (a Axis) String() string {
	if a.IsValid() {
		return axisNames[a]
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// Loop selects the attitude (outer) or rate (inner) loop.
type Loop uint8

// Loops.
const (
	Attitude Loop = iota
	Rate
)

// NumLoops is the number of loops.
const NumLoops = 2

// LoopOf maps the wire flag isRateLoop to a Loop.
func LoopOf(isRate bool) Loop {
	if isRate {
		return Rate
	}
	return Attitude
}

// String implements fmt.Stringer.
func (l Loop) String() string {
	if l == Rate {
		return "Rate"
	}
	return "Attitude"
}

// Gains is a (Kp, Ki, Kd) triple.
type Gains struct {
	Kp float32
	Ki float32
	Kd float32
}

// String implements fmt.Stringer.
func (g Gains) String() string {
	return fmt.Sprintf("P=%.4f I=%.4f D=%.4f", g.Kp, g.Ki, g.Kd)
}

// Controller is a PID controller whose gains may be replaced by the
// config path while the control loop is running. Gains are always
// swapped as a whole.
type Controller struct {
	gains Gains

	// IntegralLimit clamps the accumulated integral, 0 disables.
	IntegralLimit float32

	integral  float32
	prevError float32
	lock      sync.RWMutex
}

// NewController creates a Controller with initial gains.
func NewController(gains Gains) *Controller {
	return &Controller{gains: gains}
}

// Gains returns the current gains.
func (c *Controller) Gains() Gains {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.gains
}

// SetGains replaces all three gains at once.
func (c *Controller) SetGains(gains Gains) {
	c.lock.Lock()
	c.gains = gains
	c.lock.Unlock()
}

// Update calculates the control output for the error over dt seconds.
func (c *Controller) Update(err, dt float32) float32 {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.integral += err * dt
	if lim := c.IntegralLimit; lim > 0 {
		if c.integral > lim {
			c.integral = lim
		} else if c.integral < -lim {
			c.integral = -lim
		}
	}
	var derivative float32
	if dt > 0 {
		derivative = (err - c.prevError) / dt
	}
	c.prevError = err
	return c.gains.Kp*err + c.gains.Ki*c.integral + c.gains.Kd*derivative
}

// Reset clears integral and derivative history.
func (c *Controller) Reset() {
	c.lock.Lock()
	c.integral, c.prevError = 0, 0
	c.lock.Unlock()
}
