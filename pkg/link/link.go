package link

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/espfly/fclink/pkg/crtp"
	fx "github.com/espfly/fclink/pkg/framework"
)

// Link is the command/telemetry link: a UDP endpoint, the dispatcher
// and the two bounded queues decoupling the network from the
// application.
type Link struct {
	Endpoint   *Endpoint
	Dispatcher *Dispatcher
	Inbound    *Queue
	Outbound   *Queue
	Conn       *Connection
	Stats      *Stats

	SendTimeout  time.Duration
	TxPopTimeout time.Duration
	InitRetry    time.Duration
}

// HandleConfig sets the processor of config frames.
func (l *Link) HandleConfig(handler ConfigHandler) *Link {
	l.Dispatcher.Config = handler
	return l
}

// Name implements fx.Named.
func (l *Link) Name() string {
	return "link"
}

// Run implements fx.Runnable. It runs the receive and transmit tasks
// and closes the endpoint when ctx is done.
func (l *Link) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, l.Endpoint, func() error {
		return fx.NewRunnerWith(ctx).Go(
			fx.NamedRun("link-rx", fx.RunFunc(l.receive)),
			fx.NamedRun("link-tx", fx.RunFunc(l.transmit)),
		).Wait()
	})
}

// AddToLoop implements fx.LoopAdder.
func (l *Link) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(l)
}

// Receive blocks until an inbound control packet is available.
func (l *Link) Receive(ctx context.Context) (crtp.Packet, error) {
	return l.Inbound.Pop(ctx, 0)
}

// Send queues pkt for transmission, waiting at most SendTimeout.
func (l *Link) Send(pkt crtp.Packet) error {
	return l.send(pkt, l.SendTimeout)
}

// TrySend queues pkt only if there is room right now.
func (l *Link) TrySend(pkt crtp.Packet) error {
	return l.send(pkt, 0)
}

func (l *Link) send(pkt crtp.Packet, timeout time.Duration) error {
	if !l.Conn.IsConnected() {
		l.Stats.inc(&l.Stats.OutboundDrops)
		return ErrNotConnected
	}
	if err := l.Outbound.Push(pkt, timeout); err != nil {
		l.Stats.inc(&l.Stats.OutboundDrops)
		return err
	}
	return nil
}

func (l *Link) waitOpen(ctx context.Context) error {
	var reported bool
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := l.Endpoint.Open()
		if err == nil {
			if reported {
				glog.Infof("link endpoint initialized")
			}
			return nil
		}
		if err == ErrClosed {
			return err
		}
		if !reported {
			glog.Errorf("link endpoint init error, retrying: %v", err)
			reported = true
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.InitRetry):
		}
	}
}

func (l *Link) receive(ctx context.Context) error {
	buf := make([]byte, crtp.MaxDatagram)
	for {
		if err := l.waitOpen(ctx); err != nil {
			return err
		}
		n, addr, err := l.Endpoint.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			glog.Warningf("receive error: %v", err)
			continue
		}
		if n > crtp.MaxFrame {
			l.Stats.inc(&l.Stats.OversizeDrops)
			glog.Warningf("received %d bytes > %d, dropped", n, crtp.MaxFrame)
			continue
		}
		l.Dispatcher.Dispatch(buf[:n], addr)
	}
}

func (l *Link) transmit(ctx context.Context) error {
	for {
		if err := l.waitOpen(ctx); err != nil {
			return err
		}
		pkt, err := l.Outbound.Pop(ctx, l.TxPopTimeout)
		if err == ErrQueueEmpty {
			continue
		} else if err != nil {
			return err
		}
		addr, ok := l.Conn.Peer()
		if !ok {
			l.Stats.inc(&l.Stats.OutboundDrops)
			continue
		}
		if err := l.Endpoint.WriteTo(pkt, addr); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.Stats.inc(&l.Stats.OutboundDrops)
			glog.Warningf("send to %v error: %v", addr, err)
			continue
		}
		l.Stats.inc(&l.Stats.Transmitted)
		glog.V(2).Infof("sent port=%s channel=%d payload=%d", pkt.Port(), pkt.Channel(), len(pkt.Data))
	}
}
