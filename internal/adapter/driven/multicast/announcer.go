// Package multicast is a thin stand-in for the cluster's IP multicast
// presence announcer. The announcement protocol itself is implemented by an
// external collaborator and is out of scope here (spec §1 Non-goals); this
// adapter only gives the Manager's composition root something concrete to
// start and stop so the lifecycle wiring is complete.
package multicast

import (
	"context"
	"net"
	"time"

	"github.com/joeypjx/fleet-manager/internal/telemetry"
)

// BeaconInterval is how often the announcer re-sends its presence datagram.
const BeaconInterval = 5 * time.Second

// Announcer periodically sends a presence datagram to a multicast group.
// It carries no alarm-engine logic; the payload is the fixed byte slice
// passed to New.
type Announcer struct {
	groupAddr string
	payload   []byte

	conn   *net.UDPConn
	cancel context.CancelFunc
}

func New(groupAddr string, payload []byte) *Announcer {
	return &Announcer{groupAddr: groupAddr, payload: payload}
}

func (a *Announcer) Start(ctx context.Context) error {
	addr, err := net.ResolveUDPAddr("udp", a.groupAddr)
	if err != nil {
		return err
	}

	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return err
	}
	a.conn = conn

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	go a.loop(runCtx)
	return nil
}

func (a *Announcer) loop(ctx context.Context) {
	ticker := time.NewTicker(BeaconInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.conn.Write(a.payload); err != nil {
				telemetry.LogWarn(ctx, "multicast beacon write failed")
			}
		}
	}
}

func (a *Announcer) Stop() error {
	if a.cancel != nil {
		a.cancel()
	}
	if a.conn != nil {
		return a.conn.Close()
	}
	return nil
}
