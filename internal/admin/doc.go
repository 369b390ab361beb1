// Package admin implements remotetm-admin, the maintenance command line
// tool that works directly on the server database.
package admin
