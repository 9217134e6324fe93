// Package mask derives display-safe forms of sensitive national identifiers.
package mask

// redaction prefix for masked identifiers; only the trailing four characters
// of the raw value survive.
const redactedPrefix = "XXXX-XXXX-"

// Mask returns the display form of a sensitive identifier, exposing only the
// last four characters. Empty input is returned unchanged (callers handle
// "N/A" display separately). Identifiers shorter than four characters are
// returned verbatim - a long-standing quirk the risk displays depend on, kept
// until intended behavior for malformed inputs is confirmed.
func Mask(identifier string) string {
	if identifier == "" {
		return identifier
	}
	// Slice runes, not bytes, so multi-byte identifiers never split mid-rune.
	runes := []rune(identifier)
	if len(runes) < 4 {
		return identifier
	}
	return redactedPrefix + string(runes[len(runes)-4:])
}
