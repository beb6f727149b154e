// Package entertainment implements the bridge's DTLS-PSK Entertainment
// streaming server (spec.md §4.H): a single UDP listener that accepts
// HueStream sessions, parses frames, throttles them to 30 fps, and
// forwards the decoded per-light colors onto the backend bus.
package entertainment

import (
	"net"
	"time"

	"github.com/pion/dtls/v3"
	"github.com/sirupsen/logrus"

	"github.com/yveskaufmann/huebridge/internal/backend"
	"github.com/yveskaufmann/huebridge/internal/store"
)

// FixedPSK is the bridge's single pre-shared key; every client identity is
// accepted against this literal 16 bytes (see spec.md §6's auth endpoint).
const FixedPSK = "BifrostHueTlsKey"

// headerReadTimeout bounds how long a freshly accepted session waits for
// its first 52-byte HueStream header.
const headerReadTimeout = time.Second

// frameReadTimeout bounds the gap between frames once streaming; silence
// past this is treated as session end, same as a clean EOF.
const frameReadTimeout = 10 * time.Second

// Server is the Entertainment DTLS listener: one per bridge process, bound
// to config.Bridge.EntmPort.
type Server struct {
	addr      string
	resources *store.Resources
	bus       *backend.Bus
	log       *logrus.Entry

	listener net.Listener
}

func NewServer(addr string, resources *store.Resources, bus *backend.Bus, log *logrus.Entry) *Server {
	return &Server{
		addr:      addr,
		resources: resources,
		bus:       bus,
		log:       log.WithField("component", "entertainment"),
	}
}

func (s *Server) dtlsConfig() *dtls.Config {
	return &dtls.Config{
		PSK: func(hint []byte) ([]byte, error) {
			return []byte(FixedPSK), nil
		},
		PSKIdentityHint: []byte("Bifrost"),
		CipherSuites:    []dtls.CipherSuiteID{dtls.TLS_PSK_WITH_AES_128_GCM_SHA256},
	}
}

// Run binds the listener and accepts sessions until stop closes.
func (s *Server) Run(stop <-chan struct{}) error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}

	listener, err := dtls.Listen("udp", udpAddr, s.dtlsConfig())
	if err != nil {
		return err
	}
	s.listener = listener

	go func() {
		<-stop
		listener.Close()
	}()

	s.log.WithField("addr", s.addr).Info("entertainment: listening")

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-stop:
				return nil
			default:
				s.log.WithError(err).Warn("entertainment: accept failed")
				return err
			}
		}
		sess := newSession(s, conn)
		go sess.run()
	}
}
