package ldapserver

import (
	"log"
	"os"
)

// Logger is satisfied by *log.Logger; it's narrowed to the two methods
// this package actually calls so callers can plug in their own, matching
// the teacher's approach of accepting *log.Logger directly throughout.
type Logger interface {
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

var defaultLogger Logger = log.New(os.Stderr, "ldapserver: ", log.LstdFlags)
