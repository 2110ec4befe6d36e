package dnsmsg

import "strings"

// Packet is a full DNS message: header plus the four ordered sections.
type Packet struct {
	Header      Header
	Questions   []Question
	Answers     []Record
	Authorities []Record
	Additionals []Record
}

// NewPacket returns an empty packet with a zeroed header.
func NewPacket() *Packet {
	return &Packet{}
}

// ReadPacket decodes a full packet from buf: header, then each section in
// wire order, using the header's own counts to know how many entries to
// read from each section.
func ReadPacket(b *Buffer) (*Packet, error) {
	p := NewPacket()

	h, err := ReadHeader(b)
	if err != nil {
		return nil, err
	}
	p.Header = h

	for i := uint16(0); i < h.Questions; i++ {
		q, err := ReadQuestion(b)
		if err != nil {
			return nil, err
		}
		p.Questions = append(p.Questions, q)
	}

	for i := uint16(0); i < h.Answers; i++ {
		r, err := ReadRecord(b)
		if err != nil {
			return nil, err
		}
		p.Answers = append(p.Answers, r)
	}

	for i := uint16(0); i < h.AuthoritativeEntries; i++ {
		r, err := ReadRecord(b)
		if err != nil {
			return nil, err
		}
		p.Authorities = append(p.Authorities, r)
	}

	for i := uint16(0); i < h.ResourceEntries; i++ {
		r, err := ReadRecord(b)
		if err != nil {
			return nil, err
		}
		p.Additionals = append(p.Additionals, r)
	}

	return p, nil
}

// Write encodes p into b. The header's four section counts are always
// overwritten from the in-memory slice lengths immediately before the
// header is written, even if the caller pre-populated them with different
// values — callers must not rely on a header count surviving Write
// unmodified.
func (p *Packet) Write(b *Buffer) error {
	p.Header.Questions = uint16(len(p.Questions))
	p.Header.Answers = uint16(len(p.Answers))
	p.Header.AuthoritativeEntries = uint16(len(p.Authorities))
	p.Header.ResourceEntries = uint16(len(p.Additionals))

	if err := p.Header.Write(b); err != nil {
		return err
	}
	for _, q := range p.Questions {
		if err := q.Write(b); err != nil {
			return err
		}
	}
	for _, r := range p.Answers {
		if err := r.Write(b); err != nil {
			return err
		}
	}
	for _, r := range p.Authorities {
		if err := r.Write(b); err != nil {
			return err
		}
	}
	for _, r := range p.Additionals {
		if err := r.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// isSuffixMatch reports whether candidate is target itself or ends with
// target as a string suffix (after trimming a trailing dot from both).
//
// This is a plain lowercase ends-with check, not a label-boundary anchored
// one: searching for "example.com" will also match "evilexample.com". That
// imprecision is inherited from the reference design on purpose — see
// DESIGN.md's Open Questions — rather than fixed to the label-anchored
// version a hardened rewrite would use.
func isSuffixMatch(candidate, target string) bool {
	candidate = strings.ToLower(strings.TrimSuffix(candidate, "."))
	target = strings.ToLower(strings.TrimSuffix(target, "."))
	return candidate == target || strings.HasSuffix(candidate, target)
}

// ResolvedNS looks for an NS record in the authority section whose domain
// is a (suffix-matched) ancestor of qname, and for which the additional
// section carries a matching A glue record. It returns the glue IPv4
// address of the first such match in authority-section iteration order, or
// ok=false if no authority NS record has glue.
func (p *Packet) ResolvedNS(qname string) (addr string, ok bool) {
	for _, auth := range p.Authorities {
		if auth.Type != QTypeNS {
			continue
		}
		if !isSuffixMatch(qname, auth.Name) {
			continue
		}
		for _, add := range p.Additionals {
			if add.Type == QTypeA && strings.EqualFold(add.Name, auth.Host) {
				return add.Addr.String(), true
			}
		}
	}
	return "", false
}

// UnresolvedNS looks for an NS record in the authority section whose
// domain is a (suffix-matched) ancestor of qname and for which no glue A
// record exists in the additional section. It returns the bare NS host
// name so the caller can recursively resolve it.
func (p *Packet) UnresolvedNS(qname string) (host string, ok bool) {
	for _, auth := range p.Authorities {
		if auth.Type != QTypeNS {
			continue
		}
		if !isSuffixMatch(qname, auth.Name) {
			continue
		}
		hasGlue := false
		for _, add := range p.Additionals {
			if add.Type == QTypeA && strings.EqualFold(add.Name, auth.Host) {
				hasGlue = true
				break
			}
		}
		if !hasGlue {
			return auth.Host, true
		}
	}
	return "", false
}

// AnyA returns the first A record's address from the answer section, or
// ok=false if the section is empty or has no A record.
func (p *Packet) AnyA() (addr string, ok bool) {
	for _, a := range p.Answers {
		if a.Type == QTypeA {
			return a.Addr.String(), true
		}
	}
	return "", false
}
