package link

import (
	"net"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/espfly/fclink/pkg/crtp"
)

// Verdict is the outcome of dispatching one datagram.
type Verdict int

// Verdicts.
const (
	// VerdictControl means a control frame was queued.
	VerdictControl Verdict = iota
	// VerdictConfig means a config frame was processed.
	VerdictConfig
	// VerdictConfigRejected means the config handler refused the frame.
	VerdictConfigRejected
	// VerdictQueueFull means a valid control frame was dropped.
	VerdictQueueFull
	// VerdictChecksum means a control frame failed the checksum.
	VerdictChecksum
	// VerdictOversize means a control frame exceeded the frame size.
	VerdictOversize
	// VerdictRunt means the datagram is too short for either dialect.
	VerdictRunt
)

var verdictNames = []string{
	"control", "config", "config-rejected", "queue-full", "checksum", "oversize", "runt",
}

// String implements fmt.Stringer.
func (v Verdict) String() string {
	if int(v) < len(verdictNames) {
		return verdictNames[v]
	}
	return "unknown"
}

// ConfigHandler processes a config frame synchronously.
// frame starts with crtp.ConfigMarker and has the trailing byte removed.
type ConfigHandler interface {
	ProcessConfig(frame []byte) bool
}

// ConfigHandlerFunc is func type of ConfigHandler.
type ConfigHandlerFunc func([]byte) bool

// ProcessConfig implements ConfigHandler.
func (f ConfigHandlerFunc) ProcessConfig(frame []byte) bool {
	return f(frame)
}

// Dispatcher classifies received datagrams. Config frames go to Config
// without checksum validation, control frames are validated and pushed
// onto Inbound.
type Dispatcher struct {
	Config      ConfigHandler
	Inbound     *Queue
	Conn        *Connection
	Stats       *Stats
	PushTimeout time.Duration

	// SetpointLogInterval rate-limits the setpoint diagnostic.
	SetpointLogInterval time.Duration
	Now                 func() time.Time

	lastSetpointLog time.Time
	lock            sync.Mutex
}

// Dispatch classifies buf received from addr. Drops are logged and
// reported through the verdict only.
func (d *Dispatcher) Dispatch(buf []byte, addr net.Addr) Verdict {
	d.Stats.inc(&d.Stats.Received)
	if len(buf) < 2 {
		glog.V(1).Infof("runt datagram of %d bytes from %v", len(buf), addr)
		return VerdictRunt
	}

	if crtp.IsConfigFrame(buf) {
		// trailing byte is stripped but never validated
		frame := buf[:len(buf)-1]
		if d.Config == nil || !d.Config.ProcessConfig(frame) {
			glog.Warningf("config frame of %d bytes from %v rejected", len(frame), addr)
			return VerdictConfigRejected
		}
		d.Stats.inc(&d.Stats.Config)
		d.Conn.Observe(addr)
		return VerdictConfig
	}

	pkt, err := crtp.Decode(buf)
	switch err.(type) {
	case nil:
	case *crtp.ChecksumError:
		d.Stats.inc(&d.Stats.ChecksumDrops)
		glog.Warningf("dropped datagram from %v: %v", addr, err)
		return VerdictChecksum
	default:
		d.Stats.inc(&d.Stats.OversizeDrops)
		glog.Warningf("dropped datagram from %v: %v (%d bytes)", addr, err, len(buf))
		return VerdictOversize
	}

	d.logPacket(pkt)
	d.Conn.Observe(addr)
	if err := d.Inbound.Push(pkt, d.PushTimeout); err != nil {
		d.Stats.inc(&d.Stats.InboundDrops)
		glog.V(1).Infof("inbound %v, %s packet dropped", err, pkt.Port())
		return VerdictQueueFull
	}
	d.Stats.inc(&d.Stats.Accepted)
	return VerdictControl
}

func (d *Dispatcher) logPacket(pkt crtp.Packet) {
	if pkt.Port() != crtp.PortCommander || pkt.Channel() != 0 {
		glog.V(2).Infof("packet port=%s channel=%d payload=%d", pkt.Port(), pkt.Channel(), len(pkt.Data))
		return
	}
	sp, err := crtp.DecodeSetpoint(pkt.Data)
	if err != nil {
		return
	}
	now := time.Now()
	if d.Now != nil {
		now = d.Now()
	}
	d.lock.Lock()
	due := now.Sub(d.lastSetpointLog) >= d.SetpointLogInterval
	if due {
		d.lastSetpointLog = now
	}
	d.lock.Unlock()
	if due {
		glog.Infof("setpoint roll=%.2f pitch=%.2f yaw=%.2f thrust=%d", sp.Roll, sp.Pitch, sp.Yaw, sp.Thrust)
	}
}
