package ledger

import "fmt"

// EntityKind names the collection a lookup was made against.
type EntityKind string

const (
	KindProduct  EntityKind = "product"
	KindClient   EntityKind = "client"
	KindSupplier EntityKind = "supplier"
	KindInvoice  EntityKind = "invoice"
)

// LookupMiss records a side effect skipped because the referenced entity is
// not in the live collections. The record that triggered it is still kept.
type LookupMiss struct {
	Op   string     `json:"op"`
	Kind EntityKind `json:"kind"`
	ID   string     `json:"id"`
}

func (m LookupMiss) String() string {
	return fmt.Sprintf("%s: %s %q not found", m.Op, m.Kind, m.ID)
}

// Report lists the lookup misses of one operation. An empty report means
// every side effect was applied.
type Report struct {
	Misses []LookupMiss `json:"misses,omitempty"`
}

// OK reports whether every side effect was applied.
func (r Report) OK() bool {
	return len(r.Misses) == 0
}

func (r *Report) miss(op string, kind EntityKind, id string) {
	r.Misses = append(r.Misses, LookupMiss{Op: op, Kind: kind, ID: id})
}
