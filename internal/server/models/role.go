package models

import (
	"database/sql/driver"
	"fmt"
)

// Role is the closed set of account roles.
type Role int

const (
	Translator Role = iota + 1
	ProjectManager
	SystemAdministrator
)

// Roles lists every valid role.
var Roles = []Role{Translator, ProjectManager, SystemAdministrator}

// Code returns the persisted two-letter code.
func (r Role) Code() string {
	switch r {
	case Translator:
		return "TR"
	case ProjectManager:
		return "PM"
	case SystemAdministrator:
		return "SA"
	default:
		return ""
	}
}

func (r Role) String() string {
	switch r {
	case Translator:
		return "Translator"
	case ProjectManager:
		return "ProjectManager"
	case SystemAdministrator:
		return "SystemAdministrator"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

func (r Role) Valid() bool {
	switch r {
	case Translator, ProjectManager, SystemAdministrator:
		return true
	default:
		return false
	}
}

// ParseRole accepts either a code ("SA") or a name ("SystemAdministrator").
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if s == r.Code() || s == r.String() {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return []byte(r.Code()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Value stores the role as its code.
func (r Role) Value() (driver.Value, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return r.Code(), nil
}

func (r *Role) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return r.UnmarshalText([]byte(v))
	case []byte:
		return r.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Role", src)
	}
}
