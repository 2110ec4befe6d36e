package resolver

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"time"

	"github.com/keskinalper/dnsresolver/internal/dnsmsg"
)

// DefaultUpstreamTimeout bounds how long a single send/receive to an
// upstream server may take. The reference design imposes no timeout;
// spec.md §5 asks a conforming implementation to add one.
const DefaultUpstreamTimeout = 5 * time.Second

// Transport is the "upstream sender" collaborator: it owns outbound UDP
// sockets used to query authoritative and root name servers.
//
// Each Send dials a fresh, ephemeral (port 0) UDP socket rather than
// reusing a fixed source port. The reference design bound a single fixed
// port (43210) for every outbound query, which collides across concurrent
// resolves; an ephemeral bind avoids that entirely.
type Transport struct {
	Timeout time.Duration
}

// NewTransport returns a Transport with DefaultUpstreamTimeout.
func NewTransport() *Transport {
	return &Transport{Timeout: DefaultUpstreamTimeout}
}

// Send builds a query packet for (name, qtype), sends it to server:53 over
// a fresh ephemeral UDP socket, and decodes the reply.
func (t *Transport) Send(server, name string, qtype dnsmsg.QueryType) (*dnsmsg.Packet, error) {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultUpstreamTimeout
	}

	conn, err := net.DialTimeout("udp", net.JoinHostPort(server, "53"), timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", server, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("set deadline: %w", err)
	}

	req := dnsmsg.NewPacket()
	req.Header.ID = newTransactionID()
	req.Header.RecursionDesired = true
	req.Questions = []dnsmsg.Question{{Name: name, Type: qtype}}

	reqBuf := dnsmsg.NewBuffer()
	if err := req.Write(reqBuf); err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	if _, err := conn.Write(reqBuf.Buf[:reqBuf.Position()]); err != nil {
		return nil, fmt.Errorf("send query: %w", err)
	}

	respRaw := make([]byte, dnsmsg.MaxPacketSize)
	n, err := conn.Read(respRaw)
	if err != nil {
		return nil, fmt.Errorf("receive reply: %w", err)
	}

	respBuf := dnsmsg.NewBuffer()
	respBuf.Load(respRaw[:n])
	reply, err := dnsmsg.ReadPacket(respBuf)
	if err != nil {
		return nil, fmt.Errorf("decode reply: %w", err)
	}

	if reply.Header.ID != req.Header.ID {
		return nil, fmt.Errorf("transaction id mismatch: sent %d, got %d", req.Header.ID, reply.Header.ID)
	}

	return reply, nil
}

// newTransactionID generates a random 16-bit transaction id using a
// cryptographic source, avoiding the reference design's fixed sentinel
// value (6666) so concurrent resolvers in the wild can't be trivially
// cache-poisoned by guessing it.
func newTransactionID() uint16 {
	var b [2]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 6666
	}
	return binary.BigEndian.Uint16(b[:])
}
