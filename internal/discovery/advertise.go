// Package discovery advertises this bridge over mDNS the way a real Hue
// Bridge does: _hue._tcp records a client browses for.
package discovery

import (
	"context"
	"fmt"

	"github.com/brutella/dnssd"
	"github.com/sirupsen/logrus"
)

// Advertiser responds to _hue._tcp.local. browse/lookup queries with this
// bridge's own host and port.
type Advertiser struct {
	log       *logrus.Entry
	bridgeID  string
	modelID   string
	httpPort  uint16
}

func NewAdvertiser(bridgeID, modelID string, httpPort uint16, log *logrus.Entry) *Advertiser {
	return &Advertiser{log: log.WithField("component", "discovery"), bridgeID: bridgeID, modelID: modelID, httpPort: httpPort}
}

// Run registers the service and blocks responding to queries until stop
// closes; errors are logged, matching spec.md §7's "per-session transient
// errors" policy rather than a fatal exit.
func (a *Advertiser) Run(stop <-chan struct{}) {
	cfg := dnssd.Config{
		Name: fmt.Sprintf("Philips Hue - %s", a.bridgeID),
		Type: "_hue._tcp",
		Port: int(a.httpPort),
		Text: map[string]string{
			"bridgeid": a.bridgeID,
			"modelid":  a.modelID,
		},
	}

	service, err := dnssd.NewService(cfg)
	if err != nil {
		a.log.WithError(err).Warn("discovery: failed to build service record")
		return
	}

	responder, err := dnssd.NewResponder()
	if err != nil {
		a.log.WithError(err).Warn("discovery: failed to create responder")
		return
	}
	if _, err := responder.Add(service); err != nil {
		a.log.WithError(err).Warn("discovery: failed to register service")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-stop
		cancel()
	}()

	a.log.WithField("bridge_id", a.bridgeID).Info("discovery: advertising _hue._tcp")
	if err := responder.Respond(ctx); err != nil && ctx.Err() == nil {
		a.log.WithError(err).Warn("discovery: responder stopped")
	}
}
