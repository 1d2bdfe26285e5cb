package domain

// Entity is implemented by every server-backed record. IDs are
// server-assigned and immutable; a zero ID marks a record that has not
// been created remotely yet.
type Entity interface {
	EntityID() int64
}
