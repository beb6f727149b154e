package entertainment

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/yveskaufmann/huebridge/internal/backend"
	"github.com/yveskaufmann/huebridge/internal/codec"
	"github.com/yveskaufmann/huebridge/internal/hue"
	"github.com/yveskaufmann/huebridge/internal/store"
)

// DesyncError marks a session whose color mode or target area changed
// mid-stream, which real Entertainment clients never do; spec.md §4.H
// treats this as fatal to the session, not to the listener.
type DesyncError struct {
	Area uuid.UUID
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("entertainment: desync on area %s", e.Area)
}

// session is one accepted DTLS connection's state machine: header, then a
// fixed-size frame loop until timeout, EOF, or desync.
type session struct {
	server *Server
	conn   net.Conn

	area      uuid.UUID
	colorMode codec.HueStreamColorMode
	frameSize int

	queue *throttleQueue
}

func newSession(s *Server, conn net.Conn) *session {
	return &session{server: s, conn: conn, queue: newThrottleQueue()}
}

func (s *session) run() {
	defer s.conn.Close()

	header, err := s.readHeader()
	if err != nil {
		s.server.log.WithError(err).Warn("entertainment: session init failed")
		return
	}

	cfg, err := store.Get[*hue.EntertainmentConfiguration](s.server.resources, hue.RTypeEntertainmentConfiguration.LinkTo(header.Area))
	if err != nil {
		s.server.log.WithError(err).WithField("area", header.Area).Warn("entertainment: unknown area")
		return
	}

	s.area = header.Area
	s.colorMode = header.ColorMode
	s.frameSize = codec.HueStreamSizeWithLights(len(cfg.Channels))

	s.server.bus.Publish(backend.Request{Kind: backend.KindEntertainmentStart, EntertainmentStart: &s.area})
	defer s.server.bus.Publish(backend.Request{Kind: backend.KindEntertainmentStop, EntertainmentStop: true})

	stop := make(chan struct{})
	defer close(stop)
	go s.drain(stop)

	s.readLoop()
}

func (s *session) readHeader() (codec.HueStreamHeader, error) {
	s.conn.SetReadDeadline(time.Now().Add(headerReadTimeout))
	buf := make([]byte, codec.HueStreamHeaderSize)
	if _, err := io.ReadFull(s.conn, buf); err != nil {
		return codec.HueStreamHeader{}, err
	}
	return codec.ParseHueStreamHeader(buf)
}

// readLoop reads fixed-size frames until the connection ends or the
// stream desyncs, enqueueing every successfully parsed frame for
// throttled admission.
func (s *session) readLoop() {
	buf := make([]byte, s.frameSize)
	for {
		s.conn.SetReadDeadline(time.Now().Add(frameReadTimeout))
		if _, err := io.ReadFull(s.conn, buf); err != nil {
			if !errors.Is(err, io.EOF) {
				s.server.log.WithError(err).WithField("area", s.area).Debug("entertainment: session ended")
			}
			return
		}

		pkt, err := codec.ParseHueStreamPacket(buf)
		if err != nil {
			s.server.log.WithError(err).WithField("area", s.area).Warn("entertainment: bad frame")
			return
		}

		if pkt.Header.Area != s.area || pkt.Header.ColorMode != s.colorMode {
			s.server.log.WithError(&DesyncError{Area: s.area}).Warn("entertainment: session desync")
			return
		}

		s.queue.tryEnqueue(toFrameRequest(pkt))
	}
}

func toFrameRequest(pkt codec.HueStreamPacket) backend.EntertainmentFrameRequest {
	switch pkt.Header.ColorMode {
	case codec.ColorModeXY:
		lights := make([]backend.XYLight, 0, len(pkt.Lights))
		for _, l := range pkt.Lights {
			lights = append(lights, backend.XYLight{Channel: l.Channel, X: l.C0, Y: l.C1, Bri: l.C2})
		}
		return backend.EntertainmentFrameRequest{ColorMode: "xy", XY: lights}
	default:
		lights := make([]backend.RGBLight, 0, len(pkt.Lights))
		for _, l := range pkt.Lights {
			lights = append(lights, backend.RGBLight{Channel: l.Channel, R: l.C0, G: l.C1, B: l.C2})
		}
		return backend.EntertainmentFrameRequest{ColorMode: "rgb", RGB: lights}
	}
}
