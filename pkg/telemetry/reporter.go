package telemetry

import (
	"time"

	"github.com/golang/glog"

	fx "github.com/espfly/fclink/pkg/framework"
	"github.com/espfly/fclink/pkg/link"
	"github.com/espfly/fclink/pkg/pid"
	"github.com/espfly/fclink/pkg/power"
)

// Default intervals.
const (
	DefaultReportInterval = time.Second
	DefaultDiagInterval   = 5 * time.Second
)

// StateSource provides the battery state.
type StateSource interface {
	Snapshot() power.BatteryState
}

// PIDSource enumerates the PID controllers.
type PIDSource interface {
	Each(fn func(axis pid.Axis, loop pid.Loop, c *pid.Controller))
}

// Printer is the remote console.
type Printer interface {
	Printf(format string, args ...interface{})
}

// PIDQueryMsg requests the gains to be printed on the console.
type PIDQueryMsg struct{}

// NewMessage implements fx.Message.
func (m *PIDQueryMsg) NewMessage() fx.Message {
	return &PIDQueryMsg{}
}

// Reporter publishes the battery state at Interval, answers PID queries
// and logs link statistics at DiagInterval.
type Reporter struct {
	Source    StateSource
	Sinks     []StatusSink
	PIDs      PIDSource
	Console   Printer
	LinkStats *link.Stats

	Interval     time.Duration
	DiagInterval time.Duration

	loop       fx.LoopControl
	lastReport time.Time
	lastDiag   time.Time
}

// NewReporter creates a Reporter with default intervals.
func NewReporter(source StateSource, sinks ...StatusSink) *Reporter {
	return &Reporter{
		Source:       source,
		Sinks:        sinks,
		Interval:     DefaultReportInterval,
		DiagInterval: DefaultDiagInterval,
	}
}

// AddSinks appends sinks. Must be called before the loop runs.
func (r *Reporter) AddSinks(sinks ...StatusSink) *Reporter {
	r.Sinks = append(r.Sinks, sinks...)
	return r
}

// AddToLoop implements fx.LoopAdder.
func (r *Reporter) AddToLoop(loop *fx.Loop) {
	r.loop = loop
	loop.AddController(fx.PrLvReport, r)
}

// ReportPIDs asks the next iteration to print the gains. It's safe to
// call from any goroutine once the reporter is added to a loop.
func (r *Reporter) ReportPIDs() {
	if r.loop == nil {
		r.printPIDs()
		return
	}
	r.loop.PostMessage(&PIDQueryMsg{})
	r.loop.TriggerNext()
}

// Control implements fx.Controller.
func (r *Reporter) Control(cc fx.ControlContext) error {
	cc.ProcessMessages(func(msg fx.Message) bool {
		if _, ok := msg.(*PIDQueryMsg); ok {
			r.printPIDs()
			return true
		}
		return false
	})

	now := cc.Time()
	if r.DiagInterval > 0 && r.LinkStats != nil && now.Sub(r.lastDiag) >= r.DiagInterval {
		r.lastDiag = now
		glog.Infof("link %s", r.LinkStats.Snapshot())
	}
	if now.Sub(r.lastReport) < r.Interval {
		return nil
	}
	r.lastReport = now
	return r.Report(now)
}

// Report publishes the current state to every sink.
func (r *Reporter) Report(now time.Time) error {
	status := Status{Time: now, Battery: r.Source.Snapshot()}
	var errs fx.AggregatedError
	for _, sink := range r.Sinks {
		errs.Add(sink.PublishStatus(status))
	}
	return errs.Aggregate()
}

var loopSuffix = map[pid.Loop]string{
	pid.Attitude: "Att",
	pid.Rate:     "Rate",
}

func (r *Reporter) printPIDs() {
	if r.PIDs == nil || r.Console == nil {
		return
	}
	r.Console.Printf("========== PID Parameters ==========\n")
	current := pid.Loop(0xff)
	r.PIDs.Each(func(axis pid.Axis, loop pid.Loop, c *pid.Controller) {
		if loop != current {
			current = loop
			r.Console.Printf("[%s Loop]\n", loop)
		}
		g := c.Gains()
		r.Console.Printf("PID %s_%s: P=%.4f I=%.4f D=%.4f\n", axis, loopSuffix[loop], g.Kp, g.Ki, g.Kd)
	})
	r.Console.Printf("=====================================\n")
}
