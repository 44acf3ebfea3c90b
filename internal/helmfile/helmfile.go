// Package helmfile composes command lines for the helmfile CLI.
// It performs no validation of the resulting commands; the executor
// runs them as given.
package helmfile

import "strings"

// DefaultBinary is the helmfile executable name.
const DefaultBinary = "helmfile"

// Tool builds helmfile command lines.
type Tool struct {
	Binary string // defaults to DefaultBinary
}

func (t Tool) binary() string {
	if t.Binary != "" {
		return t.Binary
	}
	return DefaultBinary
}

// Normalize prefixes command with the helmfile binary unless the command
// already names it, so callers can pass either "list" or "helmfile list".
// The conventional "helmfile" name is accepted even when a custom binary is
// configured, and rewritten to the configured one.
func (t Tool) Normalize(command string) string {
	trimmed := strings.TrimSpace(command)
	if strings.HasPrefix(trimmed, t.binary()) {
		return command
	}
	if bin := t.binary(); bin != DefaultBinary && strings.HasPrefix(trimmed, DefaultBinary) {
		return bin + strings.TrimPrefix(trimmed, DefaultBinary)
	}
	return t.binary() + " " + command
}

// Sync builds "helmfile sync -f <path>" with an optional namespace flag.
// The namespace is trimmed; when empty the -n flag is omitted entirely.
func (t Tool) Sync(path, namespace string) string {
	parts := []string{t.binary(), "sync", "-f", path}
	if ns := strings.TrimSpace(namespace); ns != "" {
		parts = append(parts, "-n", ns)
	}
	return strings.Join(parts, " ")
}

// List builds the release listing command, scoped to path when non-empty.
func (t Tool) List(path string) string {
	return t.subcommand("list", path)
}

// Status builds the release status command, scoped to path when non-empty.
func (t Tool) Status(path string) string {
	return t.subcommand("status", path)
}

// Diff builds the diff command, scoped to path when non-empty.
func (t Tool) Diff(path string) string {
	return t.subcommand("diff", path)
}

// Destroy builds the destroy command, scoped to path when non-empty.
func (t Tool) Destroy(path string) string {
	return t.subcommand("destroy", path)
}

// VersionCommand returns the helmfile version invocation.
func (t Tool) VersionCommand() string {
	return t.binary() + " version"
}

func (t Tool) subcommand(name, path string) string {
	parts := []string{t.binary()}
	if path != "" {
		parts = append(parts, "-f", path)
	}
	parts = append(parts, name)
	return strings.Join(parts, " ")
}
