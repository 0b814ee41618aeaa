// Package endpoint identifies audio endpoints and addresses their persisted
// property keys.
package endpoint

import (
	"regexp"
	"strings"

	"github.com/roach88/audioctl/internal/ir"
)

// MMDevicesRoot is the registry key holding per-endpoint property state in
// both hives.
const MMDevicesRoot = `SOFTWARE\Microsoft\Windows\CurrentVersion\MMDevices\Audio`

// Device IDs look like "{0.0.1.00000000}.{83a9be54-901e-4429-993b-c9088e3028a0}";
// the trailing braced GUID names the endpoint's registry key.
var correlationPattern = regexp.MustCompile(`\.\{([0-9A-Fa-f-]+)\}$`)

// Endpoint is one addressable audio device as reported by enumeration.
type Endpoint struct {
	ID   string
	Flow ir.Flow
	Name string
}

// CorrelationKey extracts the lower-cased "{guid}" key from a device ID.
// It returns false for identifiers that do not match the expected format.
func CorrelationKey(id string) (string, bool) {
	m := correlationPattern.FindStringSubmatch(strings.TrimSpace(id))
	if m == nil {
		return "", false
	}
	return "{" + strings.ToLower(m[1]) + "}", true
}

// Key returns the endpoint's correlation key.
func (e Endpoint) Key() (string, bool) {
	return CorrelationKey(e.ID)
}

// NormalizeKey canonicalizes a correlation key read from the catalog or a
// user: trimmed, lower-cased and braced.
func NormalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "{") {
		s = "{" + s
	}
	if !strings.HasSuffix(s, "}") {
		s += "}"
	}
	return s
}

// KeyPath returns the registry path of rel under the endpoint key for
// correlation key key and flow. An empty rel addresses the endpoint key itself.
func KeyPath(key string, flow ir.Flow, rel string) string {
	p := MMDevicesRoot + `\` + flow.RegistryName() + `\` + key
	rel = strings.Trim(rel, `\`)
	if rel != "" {
		p += `\` + rel
	}
	return p
}

// RootPath addresses one of the two conventional path roots, optionally
// descending into nested subkeys below it.
func RootPath(key string, flow ir.Flow, root ir.PathRoot, nested ...string) string {
	parts := append([]string{root.String()}, nested...)
	return KeyPath(key, flow, strings.Join(parts, `\`))
}

// Relative strips the endpoint prefix from a full path produced by KeyPath.
// It returns false when path does not live under the endpoint key.
func Relative(key string, flow ir.Flow, path string) (string, bool) {
	prefix := KeyPath(key, flow, "") + `\`
	if len(path) < len(prefix) || !strings.EqualFold(path[:len(prefix)], prefix) {
		return "", false
	}
	return path[len(prefix):], true
}
