package link

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"time"
)

// Config defines the link settings.
type Config struct {
	// ListenAddress is the UDP address to bind, e.g. ":2390".
	ListenAddress string
	QueueCapacity int
	// PushTimeout bounds the wait of the receive task on a full
	// inbound queue.
	PushTimeout time.Duration
	// SendTimeout bounds the wait of Send on a full outbound queue.
	SendTimeout  time.Duration
	TxPopTimeout time.Duration
	// InitRetry is the interval between endpoint init attempts.
	InitRetry           time.Duration
	SetpointLogInterval time.Duration
}

var defaultConfig = Config{
	ListenAddress:       ":2390",
	QueueCapacity:       DefaultQueueCapacity,
	PushTimeout:         2 * time.Millisecond,
	SendTimeout:         100 * time.Millisecond,
	TxPopTimeout:        5 * time.Millisecond,
	InitRetry:           20 * time.Millisecond,
	SetpointLogInterval: time.Second,
}

func init() {
	if val := os.Getenv("FCLINK_LISTEN"); val != "" {
		defaultConfig.ListenAddress = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ListenAddress, "listen", defaultConfig.ListenAddress, "UDP address of the link")
	flag.IntVar(&defaultConfig.QueueCapacity, "queue-cap", defaultConfig.QueueCapacity, "Capacity of inbound/outbound queues")
	flag.DurationVar(&defaultConfig.SendTimeout, "send-timeout", defaultConfig.SendTimeout, "Timeout of queueing an outbound packet")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewLink creates a Link. The endpoint is opened by Run.
func (c *Config) NewLink() (*Link, error) {
	if _, err := net.ResolveUDPAddr("udp", c.ListenAddress); err != nil {
		return nil, fmt.Errorf("invalid listen address %q: %v", c.ListenAddress, err)
	}
	stats, conn := &Stats{}, &Connection{}
	inbound := NewQueue(c.QueueCapacity)
	return &Link{
		Endpoint: NewEndpoint(c.ListenAddress),
		Dispatcher: &Dispatcher{
			Inbound:             inbound,
			Conn:                conn,
			Stats:               stats,
			PushTimeout:         c.PushTimeout,
			SetpointLogInterval: c.SetpointLogInterval,
		},
		Inbound:      inbound,
		Outbound:     NewQueue(c.QueueCapacity),
		Conn:         conn,
		Stats:        stats,
		SendTimeout:  c.SendTimeout,
		TxPopTimeout: c.TxPopTimeout,
		InitRetry:    c.InitRetry,
	}, nil
}

// MustNewLink creates a Link and fails on error.
func (c *Config) MustNewLink() *Link {
	l, err := c.NewLink()
	if err != nil {
		log.Fatalln(err)
	}
	return l
}
