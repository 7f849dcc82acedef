package engine

// PageRegister models one chip's page register: which chunk's page is
// currently resident (CurrID), the id of a chunk being loaded into it
// right now (NextID, nil when no load is in flight), and a reference
// count of in-flight DRAM transfers still reading out of CurrID.
//
// Both CurrID and NextID are *int64 rather than sentinel integers (the
// original uses a past-the-end id for "none") per spec.md's design note
// recommending optional types over sentinel values: a freshly constructed
// register has never loaded anything, so CurrID must also start nil —
// otherwise it reads as "resident with id 0", matching whatever chunk
// happens to request id 0 first.
type PageRegister struct {
	CurrID *int64
	NextID *int64
	Refs   int
}

// Loading reports whether a load into this register is currently in flight.
func (p *PageRegister) Loading() bool { return p.NextID != nil }

// Resident reports whether id is currently the page register's stable
// content (no load in flight, content matches id).
func (p *PageRegister) Resident(id int64) bool {
	return !p.Loading() && p.CurrID != nil && *p.CurrID == id
}

// BeginLoad marks id as being loaded into this register.
func (p *PageRegister) BeginLoad(id int64) {
	v := id
	p.NextID = &v
}

// CompleteLoad promotes the in-flight load to resident content.
func (p *PageRegister) CompleteLoad() {
	if p.NextID != nil {
		p.CurrID = p.NextID
		p.NextID = nil
	}
}
