package models

// Rights are the three independent grants a user may hold on a memory.
type Rights struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Export bool `json:"export"`
}

var (
	NoRights  = Rights{}
	AllRights = Rights{Read: true, Write: true, Export: true}
)

// Any reports whether at least one grant is set.
func (r Rights) Any() bool {
	return r.Read || r.Write || r.Export
}

// Permission is the stored grant row for a (user, memory) pair.
type Permission struct {
	UserID   string `json:"user"`
	MemoryID string `json:"memory"`
	Rights
}
