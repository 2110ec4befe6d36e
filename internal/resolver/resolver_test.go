package resolver

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/keskinalper/dnsresolver/internal/dnsmsg"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newResolver(q QueryFunc) *Resolver {
	r := New(q, testLogger())
	r.RootHints = []string{"198.41.0.40"}
	return r
}

func answerReply(addr string) *dnsmsg.Packet {
	p := dnsmsg.NewPacket()
	p.Header.ResCode = dnsmsg.NOERROR
	p.Answers = []dnsmsg.Record{{Name: "example.com.", Type: dnsmsg.QTypeA, Addr: net.ParseIP(addr)}}
	return p
}

func nxdomainReply() *dnsmsg.Packet {
	p := dnsmsg.NewPacket()
	p.Header.ResCode = dnsmsg.NXDOMAIN
	return p
}

func delegationWithGlueReply() *dnsmsg.Packet {
	p := dnsmsg.NewPacket()
	p.Authorities = []dnsmsg.Record{{Name: "com.", Type: dnsmsg.QTypeNS, Host: "a.gtld-servers.net."}}
	p.Additionals = []dnsmsg.Record{{Name: "a.gtld-servers.net.", Type: dnsmsg.QTypeA, Addr: net.ParseIP("192.5.6.30")}}
	return p
}

func delegationWithoutGlueReply() *dnsmsg.Packet {
	p := dnsmsg.NewPacket()
	p.Authorities = []dnsmsg.Record{{Name: "com.", Type: dnsmsg.QTypeNS, Host: "ns1.example-registry.net."}}
	return p
}

func noDelegationReply() *dnsmsg.Packet {
	return dnsmsg.NewPacket()
}

func TestResolveTerminatesOnAnswer(t *testing.T) {
	r := newResolver(func(server, name string, qtype dnsmsg.QueryType) (*dnsmsg.Packet, error) {
		require.Equal(t, "198.41.0.40", server)
		return answerReply("93.184.216.34"), nil
	})
	reply, err := r.Resolve("example.com.", dnsmsg.QTypeA)
	require.NoError(t, err)
	addr, ok := reply.AnyA()
	require.True(t, ok)
	require.Equal(t, "93.184.216.34", addr)
}

func TestResolveTerminatesOnNXDOMAIN(t *testing.T) {
	r := newResolver(func(server, name string, qtype dnsmsg.QueryType) (*dnsmsg.Packet, error) {
		return nxdomainReply(), nil
	})
	reply, err := r.Resolve("nonexistent.example.", dnsmsg.QTypeA)
	require.NoError(t, err)
	require.Equal(t, dnsmsg.NXDOMAIN, reply.Header.ResCode)
}

// S6 behavior at the resolver level: a delegation with glue must cause the
// very next query to go to the glue address.
func TestResolveFollowsGlueThenAnswers(t *testing.T) {
	calls := 0
	r := newResolver(func(server, name string, qtype dnsmsg.QueryType) (*dnsmsg.Packet, error) {
		calls++
		switch calls {
		case 1:
			require.Equal(t, "198.41.0.40", server)
			return delegationWithGlueReply(), nil
		case 2:
			require.Equal(t, "192.5.6.30", server)
			return answerReply("93.184.216.34"), nil
		default:
			t.Fatalf("unexpected extra call to server %s", server)
			return nil, nil
		}
	})
	reply, err := r.Resolve("example.com.", dnsmsg.QTypeA)
	require.NoError(t, err)
	addr, ok := reply.AnyA()
	require.True(t, ok)
	require.Equal(t, "93.184.216.34", addr)
	require.Equal(t, 2, calls)
}

// Delegation without glue must trigger a recursive (name, A) resolution of
// the NS hostname before continuing — the branch the teacher's own
// findNextNS does not implement.
func TestResolveRecursesOnUnresolvedNS(t *testing.T) {
	calls := 0
	r := newResolver(func(server, name string, qtype dnsmsg.QueryType) (*dnsmsg.Packet, error) {
		calls++
		switch {
		case name == "example.com." && server == "198.41.0.40":
			return delegationWithoutGlueReply(), nil
		case name == "ns1.example-registry.net." && qtype == dnsmsg.QTypeA:
			return answerReply("203.0.113.5"), nil
		case name == "example.com." && server == "203.0.113.5":
			return answerReply("93.184.216.34"), nil
		default:
			t.Fatalf("unexpected call: server=%s name=%s qtype=%s", server, name, qtype)
			return nil, nil
		}
	})
	reply, err := r.Resolve("example.com.", dnsmsg.QTypeA)
	require.NoError(t, err)
	addr, ok := reply.AnyA()
	require.True(t, ok)
	require.Equal(t, "93.184.216.34", addr)
}

func TestResolveTerminatesWhenNoDelegationAndNoAnswer(t *testing.T) {
	r := newResolver(func(server, name string, qtype dnsmsg.QueryType) (*dnsmsg.Packet, error) {
		return noDelegationReply(), nil
	})
	reply, err := r.Resolve("example.com.", dnsmsg.QTypeA)
	require.NoError(t, err)
	require.Empty(t, reply.Answers)
}

func TestResolveSurfacesUpstreamFailure(t *testing.T) {
	r := newResolver(func(server, name string, qtype dnsmsg.QueryType) (*dnsmsg.Packet, error) {
		return nil, errors.New("network unreachable")
	})
	_, err := r.Resolve("example.com.", dnsmsg.QTypeA)
	require.Error(t, err)
}

func TestResolveHonorsIterationCap(t *testing.T) {
	r := newResolver(func(server, name string, qtype dnsmsg.QueryType) (*dnsmsg.Packet, error) {
		// Always delegate to itself: a referral loop with no terminating
		// condition, which the iteration cap must catch.
		return delegationWithGlueReply(), nil
	})
	r.IterationCap = 3
	_, err := r.Resolve("example.com.", dnsmsg.QTypeA)
	require.Error(t, err)
}
