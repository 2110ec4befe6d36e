// Package serve is the external collaborator wrapping the resolver core:
// it binds a UDP socket, decodes inbound datagrams, drives the resolver,
// and writes back a response. It is deliberately single-threaded and
// blocking — one request is fully resolved, including any recursive NS
// glue lookups, before the next is accepted. There is no per-request
// goroutine, no queue, and no shared mutable cache in this loop, per the
// reference design's concurrency model.
package serve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/keskinalper/dnsresolver/internal/dnsmsg"
	"github.com/keskinalper/dnsresolver/internal/metrics"
	"github.com/keskinalper/dnsresolver/internal/resolver"
)

// Server is the blocking UDP serve loop.
type Server struct {
	Addr     string
	Resolver *resolver.Resolver
	Logger   *slog.Logger

	// ReusePort, when true, sets SO_REUSEPORT on the listening socket so
	// more than one single-threaded resolver process can bind the same
	// address. It does not change this loop's per-process concurrency: it
	// is a deployment knob, not a request-handling one.
	ReusePort bool

	conn net.PacketConn
}

// New returns a Server bound to addr, not yet listening.
func New(addr string, r *resolver.Resolver, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if r != nil && r.OnIteration == nil {
		r.OnIteration = func(hops int) { metrics.IterationCount.Observe(float64(hops)) }
	}
	return &Server{Addr: addr, Resolver: r, Logger: logger}
}

// Run listens on Addr and serves requests until the socket is closed or a
// fatal listen error occurs. It blocks the calling goroutine; callers that
// want graceful shutdown should close the connection (via Close) from
// another goroutine in response to a cancellation signal.
func (s *Server) Run() error {
	var lc net.ListenConfig
	if s.ReusePort {
		lc.Control = controlReusePort
	}

	conn, err := lc.ListenPacket(context.Background(), "udp", s.Addr)
	if err != nil {
		return fmt.Errorf("serve: listen %s: %w", s.Addr, err)
	}
	s.conn = conn
	defer conn.Close()

	s.Logger.Info("dns resolver listening", "addr", s.Addr, "reuseport", s.ReusePort)

	buf := make([]byte, dnsmsg.MaxPacketSize)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.Logger.Warn("read failed", "err", err)
			continue
		}

		start := time.Now()
		respBytes, rcode, qtype := s.handle(buf[:n])
		metrics.ResolveDuration.Observe(time.Since(start).Seconds())
		metrics.QueriesTotal.WithLabelValues(qtype, rcode.String()).Inc()

		if _, err := conn.WriteTo(respBytes, addr); err != nil {
			s.Logger.Warn("write failed", "addr", addr, "err", err)
		}
	}
}

// Close stops Run's accept loop by closing the listening socket.
func (s *Server) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// handle decodes one inbound datagram, drives the resolver, and encodes a
// response. Per spec.md §7: a buffer-overflow or jump-limit decode failure
// maps to SERVFAIL, a well-formed request with zero questions maps to
// FORMERR, and a resolver failure maps to SERVFAIL.
func (s *Server) handle(raw []byte) (out []byte, rcode dnsmsg.ResultCode, qtype string) {
	reqBuf := dnsmsg.NewBuffer()
	reqBuf.Load(raw)

	req, err := dnsmsg.ReadPacket(reqBuf)
	if err != nil {
		s.Logger.Warn("malformed request", "err", err)
		return s.errorResponse(0, dnsmsg.SERVFAIL), dnsmsg.SERVFAIL, "unknown"
	}

	if len(req.Questions) == 0 {
		return s.errorResponse(req.Header.ID, dnsmsg.FORMERR), dnsmsg.FORMERR, "unknown"
	}

	q := req.Questions[0]
	reply, err := s.Resolver.Resolve(q.Name, q.Type)
	if err != nil {
		s.Logger.Warn("resolve failed", "qname", q.Name, "qtype", q.Type.String(), "err", err)
		metrics.UpstreamFailuresTotal.Inc()
		return s.errorResponse(req.Header.ID, dnsmsg.SERVFAIL), dnsmsg.SERVFAIL, q.Type.String()
	}

	reply.Header.ID = req.Header.ID
	reply.Header.Response = true
	reply.Header.RecursionDesired = req.Header.RecursionDesired
	reply.Header.RecursionAvailable = true

	respBuf := dnsmsg.NewBuffer()
	if err := reply.Write(respBuf); err != nil {
		s.Logger.Warn("encode reply failed", "err", err)
		return s.errorResponse(req.Header.ID, dnsmsg.SERVFAIL), dnsmsg.SERVFAIL, q.Type.String()
	}

	return respBuf.Buf[:respBuf.Position()], reply.Header.ResCode, q.Type.String()
}

// errorResponse builds a minimal response carrying only the given rcode,
// echoing the request id. Used when the request can't be answered at all.
func (s *Server) errorResponse(id uint16, rcode dnsmsg.ResultCode) []byte {
	p := dnsmsg.NewPacket()
	p.Header.ID = id
	p.Header.Response = true
	p.Header.ResCode = rcode

	b := dnsmsg.NewBuffer()
	if err := p.Write(b); err != nil {
		return nil
	}
	return b.Buf[:b.Position()]
}
