package devices

import (
	"regexp"
	"strings"

	"github.com/easygrow/plantcore/internal/types"
)

var macPattern = regexp.MustCompile(`^([0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}$`)

// CanonicalMAC validates a hardware address and normalizes it to the
// stored form: upper-case, colon-separated (AA:BB:CC:DD:EE:FF). Both `:`
// and `-` separators are accepted on input.
func CanonicalMAC(raw string) (string, error) {
	mac := strings.TrimSpace(raw)
	if !macPattern.MatchString(mac) {
		return "", types.InvalidInput("invalid MAC address format, expected XX:XX:XX:XX:XX:XX")
	}
	return strings.ToUpper(strings.ReplaceAll(mac, "-", ":")), nil
}
