package dnsmsg

// Question is a single entry in a DNS message's question section: a
// lowercased dotted domain name and a query type. Class is always IN (1)
// and is never retained — fixed on write, discarded on read.
type Question struct {
	Name string
	Type QueryType
}

// ReadQuestion decodes a Question at the buffer's cursor.
func ReadQuestion(b *Buffer) (Question, error) {
	var q Question

	name, err := b.ReadName()
	if err != nil {
		return q, err
	}
	q.Name = name

	typeNum, err := b.ReadU16()
	if err != nil {
		return q, err
	}
	q.Type = QueryTypeFromNum(typeNum)

	if _, err := b.ReadU16(); err != nil { // class, discarded
		return q, err
	}
	return q, nil
}

// Write encodes q at the buffer's cursor.
func (q Question) Write(b *Buffer) error {
	if err := WriteName(b, q.Name); err != nil {
		return err
	}
	if err := b.WriteU16(q.Type.Num()); err != nil {
		return err
	}
	return b.WriteU16(1) // class IN
}
