package resource

// Snapshot is the resource collection returned by a single list fetch.
// It is never mutated after construction; views are always derived from the
// latest snapshot.
type Snapshot struct {
	items []Resource
}

func NewSnapshot(items []Resource) Snapshot {
	cp := make([]Resource, len(items))
	copy(cp, items)
	return Snapshot{items: cp}
}

func (s Snapshot) Len() int { return len(s.items) }

func (s Snapshot) Empty() bool { return len(s.items) == 0 }

func (s Snapshot) At(i int) Resource { return s.items[i] }

// All returns a copy of the resources in backend order.
func (s Snapshot) All() []Resource {
	cp := make([]Resource, len(s.items))
	copy(cp, s.items)
	return cp
}
