package models

import "time"

// Memory is the metadata record of a translation memory.
type Memory struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Owner        string    `json:"owner"`
	Project      string    `json:"project"`
	Subject      string    `json:"subject"`
	Client       string    `json:"client"`
	CreationDate time.Time `json:"creationDate"`
}
