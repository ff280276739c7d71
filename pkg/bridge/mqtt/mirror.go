package mqtt

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/espfly/fclink/pkg/link"
	"github.com/espfly/fclink/pkg/telemetry"
)

// Topics under <prefix><device>/.
const (
	TopicStatus  = "status"
	TopicConsole = "console"
	TopicOnline  = "online"
	TopicConfig  = "config"
)

// Mirror publishes battery status and console lines and feeds config
// frames received on the config topic to a ConfigHandler.
type Mirror struct {
	Queue  *Queue
	Device string
	Config link.ConfigHandler
}

// NewMirror creates a Mirror for the device. The broker marks the
// device offline if the connection is lost.
func NewMirror(brokerURL, device string) (*Mirror, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+device+"/"+TopicOnline, []byte("0"), 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("fclink:" + device)
	}
	m := &Mirror{Queue: NewQueue(opts, topicPrefix), Device: device}
	m.Queue.OnConnect = func(q *Queue) {
		q.PubWith(m.topic(TopicOnline), []byte("1"), 1, true)
	}
	return m, nil
}

func (m *Mirror) topic(name string) string {
	return m.Device + "/" + name
}

// Name implements fx.Named.
func (m *Mirror) Name() string {
	return "mqtt-mirror"
}

// Run implements fx.Runnable.
func (m *Mirror) Run(ctx context.Context) error {
	m.Queue.Sub(m.topic(TopicConfig), m.handleConfig)
	m.Queue.Connect()
	<-ctx.Done()
	if m.Queue.Client.IsConnected() {
		m.Queue.PubWith(m.topic(TopicOnline), []byte("0"), 1, true).WaitTimeout(time.Second)
	}
	m.Queue.Close()
	return ctx.Err()
}

// PublishStatus implements telemetry.StatusSink. Reports are dropped
// while disconnected.
func (m *Mirror) PublishStatus(s telemetry.Status) error {
	if !m.Queue.Client.IsConnected() {
		return nil
	}
	data, err := EncodeStatus(s)
	if err != nil {
		return err
	}
	m.Queue.Pub(m.topic(TopicStatus), data)
	return nil
}

// ConsoleLine implements console.LineSink.
func (m *Mirror) ConsoleLine(line string) {
	if m.Queue.Client.IsConnected() {
		m.Queue.Pub(m.topic(TopicConsole), []byte(line))
	}
}

// handleConfig takes a config frame without trailing byte.
func (m *Mirror) handleConfig(topic string, payload []byte) {
	if m.Config == nil {
		return
	}
	if !m.Config.ProcessConfig(payload) {
		glog.Warningf("mqtt %s: invalid config frame of %d bytes", topic, len(payload))
	}
}
