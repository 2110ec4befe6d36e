package dnsmsg

import "net"

// Record is a single resource record. Only A, AAAA, NS, CNAME and MX carry
// a decoded payload; any other wire type decodes as Unknown with the raw
// data skipped and its length retained (it is silently dropped again on
// re-encode — see Write).
type Record struct {
	Name string
	Type QueryType
	TTL  uint32

	Addr     net.IP // A (4 bytes) or AAAA (16 bytes)
	Host     string // NS, CNAME, and the exchange host for MX
	Priority uint16 // MX only

	UnknownRDLength uint16 // Type.IsUnknown() only
}

// ReadRecord decodes (name, type, class, ttl, rdlength) then the type's
// body, dispatching on the type read from the wire.
func ReadRecord(b *Buffer) (Record, error) {
	var r Record

	name, err := b.ReadName()
	if err != nil {
		return r, err
	}
	r.Name = name

	typeNum, err := b.ReadU16()
	if err != nil {
		return r, err
	}
	r.Type = QueryTypeFromNum(typeNum)

	if _, err := b.ReadU16(); err != nil { // class, discarded
		return r, err
	}

	ttl, err := b.ReadU32()
	if err != nil {
		return r, err
	}
	r.TTL = ttl

	rdlength, err := b.ReadU16()
	if err != nil {
		return r, err
	}

	switch r.Type {
	case QTypeA:
		raw, err := b.ReadU32()
		if err != nil {
			return r, err
		}
		r.Addr = net.IPv4(byte(raw>>24), byte(raw>>16), byte(raw>>8), byte(raw)).To4()

	case QTypeAAAA:
		segs := make([]byte, 0, 16)
		for i := 0; i < 4; i++ {
			word, err := b.ReadU32()
			if err != nil {
				return r, err
			}
			segs = append(segs, byte(word>>24), byte(word>>16), byte(word>>8), byte(word))
		}
		r.Addr = net.IP(segs)

	case QTypeNS, QTypeCNAME:
		host, err := b.ReadName()
		if err != nil {
			return r, err
		}
		r.Host = host

	case QTypeMX:
		priority, err := b.ReadU16()
		if err != nil {
			return r, err
		}
		r.Priority = priority
		host, err := b.ReadName()
		if err != nil {
			return r, err
		}
		r.Host = host

	default:
		r.UnknownRDLength = rdlength
		if err := b.Step(int(rdlength)); err != nil {
			return r, err
		}
	}

	return r, nil
}

// Write encodes r at the buffer's cursor. Fixed-width bodies (A, AAAA)
// write their rdlength directly; variable-width bodies (NS, CNAME, MX)
// reserve a 2-byte rdlength slot, write the body, then back-patch the
// reserved slot with the body's actual length. Unknown records are
// silently skipped — nothing is written for them at all, matching the
// reference design's write behavior.
func (r Record) Write(b *Buffer) error {
	if r.Type.IsUnknown() {
		return nil
	}

	if err := WriteName(b, r.Name); err != nil {
		return err
	}
	if err := b.WriteU16(r.Type.Num()); err != nil {
		return err
	}
	if err := b.WriteU16(1); err != nil { // class IN
		return err
	}
	if err := b.WriteU32(r.TTL); err != nil {
		return err
	}

	switch r.Type {
	case QTypeA:
		if err := b.WriteU16(4); err != nil {
			return err
		}
		v4 := r.Addr.To4()
		for _, octet := range v4 {
			if err := b.WriteByte(octet); err != nil {
				return err
			}
		}
		return nil

	case QTypeAAAA:
		if err := b.WriteU16(16); err != nil {
			return err
		}
		v6 := r.Addr.To16()
		for _, octet := range v6 {
			if err := b.WriteByte(octet); err != nil {
				return err
			}
		}
		return nil

	case QTypeNS, QTypeCNAME:
		lenPos := b.Position()
		if err := b.WriteU16(0); err != nil {
			return err
		}
		if err := WriteName(b, r.Host); err != nil {
			return err
		}
		currPos := b.Position()
		if err := b.BackPatchU16(lenPos, uint16(currPos-(lenPos+2))); err != nil {
			return err
		}
		return nil

	case QTypeMX:
		lenPos := b.Position()
		if err := b.WriteU16(0); err != nil {
			return err
		}
		if err := b.WriteU16(r.Priority); err != nil {
			return err
		}
		if err := WriteName(b, r.Host); err != nil {
			return err
		}
		currPos := b.Position()
		if err := b.BackPatchU16(lenPos, uint16(currPos-(lenPos+2))); err != nil {
			return err
		}
		return nil
	}

	return nil
}
