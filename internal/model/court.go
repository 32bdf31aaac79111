package model

// Court is one physical court.  Courts are interchangeable; a court is
// identified by name only and may be assigned to any number of slots in
// disjoint time ranges.
type Court struct {
	ID   uint64 // courts.id
	Name string // courts.name (unique)
}
