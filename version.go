package gdbmi

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// versionPattern extracts the leading major.minor(.patch) triple out of a
// "GNU gdb (...) 7.11.1" style version string, preserved from the
// original's `[7-9]+\.[0-9]+(\.[0-9]+)?` regex in handleVersion but
// generalized to any leading digit so future major versions aren't
// silently rejected by the lexer (the semver constraint below is what
// actually enforces the floor).
var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

// CheckGdbVersion parses the "gdb show version" result text and checks it
// against the ">= constraint" minimum, grounded on
// sidkshatriya-dontbug/engine/base.go's CheckGdbExecutable, which runs the
// same "gdb --version" + semver.NewConstraint(">= ...") + Check() sequence
// before allowing a session to proceed.
func CheckGdbVersion(versionText string, minVersion string) (*semver.Version, error) {
	m := versionPattern.FindStringSubmatch(versionText)
	if m == nil {
		return nil, newError(ErrVersion, "CheckGdbVersion", fmt.Sprintf("no version number found in %q", versionText), nil)
	}
	v, err := semver.NewVersion(m[0])
	if err != nil {
		return nil, newError(ErrVersion, "CheckGdbVersion", "parsing version", err)
	}
	constraint, err := semver.NewConstraint(">= " + minVersion)
	if err != nil {
		return nil, newError(ErrVersion, "CheckGdbVersion", "parsing constraint", err)
	}
	if !constraint.Check(v) {
		return v, newError(ErrVersion, "CheckGdbVersion", fmt.Sprintf("gdb version %s does not satisfy >= %s", v, minVersion), nil)
	}
	return v, nil
}
