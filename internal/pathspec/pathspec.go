// Package pathspec parses xeno's path specification grammar:
//
//	[[user@]host:[port:]]file_path
//
// See spec.md section 4.1.
package pathspec

import (
	"strconv"
	"strings"

	"github.com/xenoscopic/xeno/internal/xerr"
)

// Spec is an immutable parsed path specification.
type Spec struct {
	User     string
	Host     string
	Port     int // 0 means unset
	FilePath string
}

// IsLocal reports whether the specification refers to the local host.
func (s Spec) IsLocal() bool {
	return s.Host == ""
}

// HasPort reports whether an explicit port was specified.
func (s Spec) HasPort() bool {
	return s.Port != 0
}

// Parse parses a specification string into a Spec, or returns an
// InvalidSpecification error.
func Parse(specification string) (Spec, error) {
	remaining := specification

	var user string
	userSplit := strings.Split(remaining, "@")
	switch len(userSplit) {
	case 1:
		// no username
	case 2:
		user = userSplit[0]
		remaining = userSplit[1]
	default:
		return Spec{}, invalid(specification)
	}

	var host, filePath string
	var port int

	parts := strings.Split(remaining, ":")
	switch len(parts) {
	case 1:
		filePath = parts[0]
	case 2:
		host = parts[0]
		filePath = parts[1]
	case 3:
		host = parts[0]
		p, err := strconv.Atoi(parts[1])
		if err != nil {
			return Spec{}, invalid(specification)
		}
		port = p
		filePath = parts[2]
	default:
		return Spec{}, invalid(specification)
	}

	if filePath == "" {
		return Spec{}, invalid(specification)
	}

	if host == "" && user != "" {
		return Spec{}, invalid(specification)
	}

	return Spec{User: user, Host: host, Port: port, FilePath: filePath}, nil
}

func invalid(specification string) error {
	return xerr.New(xerr.InvalidSpecification,
		errInvalid{specification})
}

type errInvalid struct{ spec string }

func (e errInvalid) Error() string {
	return "invalid path specification: " + e.spec
}
