package pid

// DefaultGains are the power-on gains, indexed by [Loop][Axis].
var DefaultGains = [NumLoops][NumAxes]Gains{
	Attitude: {
		Roll:  {Kp: 5.9, Ki: 2.9, Kd: 0},
		Pitch: {Kp: 5.9, Ki: 2.9, Kd: 0},
		Yaw:   {Kp: 6, Ki: 1, Kd: 0.35},
	},
	Rate: {
		Roll:  {Kp: 250, Ki: 500, Kd: 2.5},
		Pitch: {Kp: 250, Ki: 500, Kd: 2.5},
		Yaw:   {Kp: 120, Ki: 16.7, Kd: 0},
	},
}

// Registry holds the six live controllers addressed by (axis, loop).
type Registry struct {
	controllers [NumLoops][NumAxes]*Controller
}

// NewRegistry creates controllers seeded with DefaultGains.
func NewRegistry() *Registry {
	r := &Registry{}
	for l := range r.controllers {
		for a := range r.controllers[l] {
			r.controllers[l][a] = NewController(DefaultGains[l][a])
		}
	}
	return r
}

// Target returns the controller for (axis, loop).
func (r *Registry) Target(axis Axis, loop Loop) (*Controller, error) {
	if !axis.IsValid() || loop >= NumLoops {
		return nil, ErrInvalidAxis
	}
	return r.controllers[loop][axis], nil
}

// Each calls fn for every controller, attitude loop first, then rate,
// each in Roll, Pitch, Yaw order.
func (r *Registry) Each(fn func(axis Axis, loop Loop, c *Controller)) {
	for l := Loop(0); l < NumLoops; l++ {
		for a := Axis(0); a < NumAxes; a++ {
			fn(a, l, r.controllers[l][a])
		}
	}
}

// Snapshot returns the current gains indexed by [Loop][Axis].
func (r *Registry) Snapshot() [NumLoops][NumAxes]Gains {
	var gains [NumLoops][NumAxes]Gains
	r.Each(func(axis Axis, loop Loop, c *Controller) {
		gains[loop][axis] = c.Gains()
	})
	return gains
}
