// Package versions holds the version of the nanobanana server and the check
// clients use to decide whether they can talk to it.
package versions

import "github.com/Masterminds/semver/v3"

// Version is the current version of the server.
// The version follows semantic versioning (MAJOR.MINOR.PATCH).
const Version = "0.1.0"

// ServerName is the name announced to MCP clients.
const ServerName = "nanobanana"

// compatible accepts any 0.1.x release.
var compatible *semver.Constraints

func init() {
	var err error
	compatible, err = semver.NewConstraint("~" + Version)
	if err != nil {
		panic(err)
	}
}

// IsVersionCompatible reports whether version can interoperate with this
// server. Invalid version strings are never compatible.
func IsVersionCompatible(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return compatible.Check(v)
}
