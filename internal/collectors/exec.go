package collectors

import (
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strings"
	"time"
	"unicode"
)

var interfaceNamePattern = regexp.MustCompile(`^[a-zA-Z0-9._:@-]+$`)

// ValidateInterfaceName reports whether name is safe to pass as a command
// argument. The @ form covers veth pairs (eth0@if2).
func ValidateInterfaceName(name string) bool {
	if name == "" || len(name) > 64 {
		return false
	}
	return interfaceNamePattern.MatchString(name)
}

// RunCommand executes a command with a deadline and returns its trimmed
// stdout. Commands are always run directly, never through a shell. A
// non-zero exit, a missing binary, or a timeout all come back as a
// ProbeError; callers treat any error as "no data".
func RunCommand(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return "", NewProbeError(name, ErrorTypeTimeout, "command timed out", err)
		case errors.Is(err, exec.ErrNotFound):
			return "", NewProbeError(name, ErrorTypeUnavailable, "command not found", err)
		default:
			return "", NewProbeError(name, ErrorTypeQuery, "command failed", err)
		}
	}
	return strings.TrimSpace(string(out)), nil
}

// CommandExists reports whether a command can be found in PATH.
func CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// SanitizeForLog strips newlines, ANSI escapes, and control characters from
// a value before it is attached to a log record, and truncates long values.
func SanitizeForLog(value string) string {
	text := strings.NewReplacer("\n", " ", "\r", " ").Replace(value)
	text = ansiEscape.ReplaceAllString(text, "")

	var b strings.Builder
	for _, r := range text {
		if unicode.IsPrint(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	text = b.String()

	if len(text) > 200 {
		text = text[:197] + "..."
	}
	return text
}
