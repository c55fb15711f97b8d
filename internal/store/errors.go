package store

import "strings"

// isBusyError reports SQLITE_BUSY and "database is locked" errors, both of
// which clear up once the competing writer finishes.
func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
