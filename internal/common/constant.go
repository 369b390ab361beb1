package common

// SessionHeaderName is the HTTP header that carries the session ticket.
const SessionHeaderName = "Session"

// AdministratorID is the account seeded on first start.
const AdministratorID = "sysadmin"

// Response envelope values shared by every JSON endpoint.
const (
	StatusKey = "status"
	StatusOK  = "OK"
	StatusErr = "Error"
	ReasonKey = "reason"
)
