package telemetry

import (
	"time"

	"github.com/golang/glog"

	"github.com/espfly/fclink/pkg/crtp"
	"github.com/espfly/fclink/pkg/link"
	"github.com/espfly/fclink/pkg/power"
)

// Status is one battery report.
type Status struct {
	Time    time.Time
	Battery power.BatteryState
}

// Frame encodes the status payload of the link.
func (s Status) Frame() crtp.BatteryStatus {
	return StatusFrom(s.Battery)
}

// StatusFrom converts a battery state into its wire form.
func StatusFrom(b power.BatteryState) crtp.BatteryStatus {
	return crtp.BatteryStatus{
		Voltage:      b.Voltage,
		VoltageMilli: b.VoltageMilli,
		Level:        b.Level,
		State:        uint8(b.State),
	}
}

// StatusSink publishes battery reports.
type StatusSink interface {
	PublishStatus(Status) error
}

// Sender queues packets without waiting.
type Sender interface {
	TrySend(crtp.Packet) error
}

// LinkSink publishes reports on the link. Reports which can't be
// queued are dropped.
type LinkSink struct {
	Sender Sender
}

// PublishStatus implements StatusSink.
func (s *LinkSink) PublishStatus(status Status) error {
	err := s.Sender.TrySend(status.Frame().Packet())
	switch err {
	case nil:
	case link.ErrNotConnected, link.ErrQueueFull:
		glog.V(2).Infof("battery status dropped: %v", err)
	default:
		return err
	}
	return nil
}
