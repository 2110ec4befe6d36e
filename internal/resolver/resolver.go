// Package resolver implements the iterative recursion loop that walks the
// DNS delegation graph from a root name server down to an authoritative
// answer, NXDOMAIN, or a no-more-progress termination.
package resolver

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"github.com/keskinalper/dnsresolver/internal/dnsmsg"
)

// DefaultRootIP is the a-root-servers.net address used to seed a
// resolution when no other root hint is supplied.
const DefaultRootIP = "198.41.0.40"

// DefaultIterationCap bounds the number of hops a single resolve will
// follow before giving up, defending against referral loops. The source
// this design was distilled from imposes no such cap.
const DefaultIterationCap = 16

// rootHints lists the thirteen published root server addresses, used to
// spread load and fail over if one root is unreachable. spec.md names a
// single pluggable root IP (DefaultRootIP); this list is the pluggable set
// it invites, generalized from a single address to the full root zone.
var rootHints = []string{
	"198.41.0.40",    // a.root-servers.net (spec.md's reference root)
	"170.247.170.2",  // b.root-servers.net
	"192.33.4.12",    // c.root-servers.net
	"199.7.91.13",    // d.root-servers.net
	"192.203.230.10", // e.root-servers.net
	"192.5.5.241",    // f.root-servers.net
	"192.112.36.4",   // g.root-servers.net
	"198.97.190.53",  // h.root-servers.net
	"192.36.148.17",  // i.root-servers.net
	"192.58.128.30",  // j.root-servers.net
	"193.0.14.129",   // k.root-servers.net
	"199.7.83.42",    // l.root-servers.net
	"202.12.27.33",   // m.root-servers.net
}

// QueryFunc sends a query for (name, qtype) to server:53 and returns the
// decoded reply. It is the "upstream sender" collaborator spec.md §6
// describes. Resolver has no default; cmd/dnsresolver wires Transport.Send.
type QueryFunc func(server, name string, qtype dnsmsg.QueryType) (*dnsmsg.Packet, error)

// Resolver runs the iterative recursion loop of spec.md §4.F.
type Resolver struct {
	// RootHints is the list of candidate root server IPv4 addresses tried,
	// in shuffled order, at the start of a resolve. Defaults to the
	// published root server set with DefaultRootIP first.
	RootHints []string
	// IterationCap bounds the number of hops followed in a single resolve
	// from one root hint. Zero means DefaultIterationCap. Resolving the
	// address of an NS host that came without glue is a separate Resolve
	// call with its own cap; hops spent there are not counted against the
	// cap of the resolve that triggered it.
	IterationCap int

	Query  QueryFunc
	Logger *slog.Logger

	// OnIteration, if set, is called once per completed resolveFrom call
	// with the number of hops it took before terminating. The server wires
	// this to the dnsresolver_resolve_iterations histogram; it is nil (and
	// skipped) in tests that don't care about metrics.
	OnIteration func(hops int)
}

// New returns a Resolver wired to send queries through query.
func New(query QueryFunc, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	hints := make([]string, len(rootHints))
	copy(hints, rootHints)
	return &Resolver{
		RootHints:    hints,
		IterationCap: DefaultIterationCap,
		Query:        query,
		Logger:       logger,
	}
}

// ErrNoProgress is returned when the loop's iteration cap is reached
// without a terminating classification.
var ErrNoProgress = errors.New("resolver: iteration cap reached without a terminating reply")

// Resolve iteratively walks the delegation graph for (qname, qtype),
// starting from a shuffled root hint, and returns the first reply packet
// that satisfies one of spec.md §4.F's termination conditions: a
// non-empty, NOERROR answer; an NXDOMAIN; or a delegation with no further
// progress possible.
func (r *Resolver) Resolve(qname string, qtype dnsmsg.QueryType) (*dnsmsg.Packet, error) {
	reqID := uuid.New().String()
	log := r.Logger.With("req_id", reqID, "qname", qname, "qtype", qtype.String())

	hopCap := r.IterationCap
	if hopCap <= 0 {
		hopCap = DefaultIterationCap
	}

	var lastErr error
	for _, root := range r.shuffledRoots() {
		reply, err := r.resolveFrom(root, qname, qtype, hopCap, log)
		if err != nil {
			lastErr = err
			log.Warn("root unreachable, trying next hint", "root", root, "err", err)
			continue
		}
		return reply, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("resolver: all root hints failed: %w", lastErr)
	}
	return nil, errors.New("resolver: no root hints configured")
}

func (r *Resolver) resolveFrom(root, qname string, qtype dnsmsg.QueryType, hopCap int, log *slog.Logger) (*dnsmsg.Packet, error) {
	currentNS := root

	for i := 0; i < hopCap; i++ {
		reply, err := r.Query(currentNS, qname, qtype)
		if err != nil {
			return nil, fmt.Errorf("querying %s: %w", currentNS, err)
		}

		if len(reply.Answers) > 0 && reply.Header.ResCode == dnsmsg.NOERROR {
			log.Info("resolved", "ns", currentNS, "hops", i+1)
			r.reportIterations(i + 1)
			return reply, nil
		}
		if reply.Header.ResCode == dnsmsg.NXDOMAIN {
			log.Info("nxdomain", "ns", currentNS, "hops", i+1)
			r.reportIterations(i + 1)
			return reply, nil
		}

		if addr, ok := reply.ResolvedNS(qname); ok {
			log.Debug("delegation with glue", "ns", currentNS, "next", addr)
			currentNS = addr
			continue
		}

		if host, ok := reply.UnresolvedNS(qname); ok {
			log.Debug("delegation without glue, recursing on NS name", "ns", currentNS, "host", host)
			glue, err := r.Resolve(host, dnsmsg.QTypeA)
			if err == nil {
				if addr, ok := glue.AnyA(); ok {
					currentNS = addr
					continue
				}
			}
			log.Debug("NS glue resolution yielded no address, terminating with delegation reply", "host", host)
			r.reportIterations(i + 1)
			return reply, nil
		}

		log.Debug("no delegation, terminating with last reply", "ns", currentNS)
		r.reportIterations(i + 1)
		return reply, nil
	}

	return nil, ErrNoProgress
}

func (r *Resolver) reportIterations(hops int) {
	if r.OnIteration != nil {
		r.OnIteration(hops)
	}
}

func (r *Resolver) shuffledRoots() []string {
	hints := r.RootHints
	if len(hints) == 0 {
		hints = []string{DefaultRootIP}
	}
	shuffled := make([]string, len(hints))
	copy(shuffled, hints)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled
}
