package shaper

import (
	"fmt"
	"regexp"
	"strings"
)

const markerPrefix = "\n\n[truncated: "

// markerSuffix matches a complete marker at the end of the string, exactly
// as truncate emits it. Guidance never contains a closing bracket, so a
// well-formed marker is always the final character run of the output.
var markerSuffix = regexp.MustCompile(`^\n\n\[truncated: \d+ of \d+ chars shown; [^\]]*\]$`)

// Truncate cuts content to the first limit characters and appends a marker
// stating the original length, so the caller always knows more data exists
// and can re-request it. Truncating an already-marked string at the same
// limit is a no-op: the pre-marker payload is never shrunk further.
func Truncate(content string, limit int) string {
	return truncate(content, limit, "refine the request or supply a purpose to retrieve more")
}

// TruncateWithGuidance is Truncate with a caller-specific instruction in
// the marker, used when the execution envelope exceeds the caller's output
// budget and no purpose was given.
func TruncateWithGuidance(content string, limit int, guidance string) string {
	return truncate(content, limit, guidance)
}

func truncate(content string, limit int, guidance string) string {
	if limit <= 0 {
		limit = 1
	}

	// Idempotence at the marker boundary: a payload we already cut to the
	// limit keeps its marker instead of being cut again. The shortcut only
	// fires when the string ends in a complete marker of our own format;
	// content that merely embeds the marker prefix is cut like any other.
	if i := strings.LastIndex(content, markerPrefix); i >= 0 &&
		markerSuffix.MatchString(content[i:]) &&
		len([]rune(content[:i])) <= limit {
		return content
	}

	runes := []rune(content)
	if len(runes) <= limit {
		return content
	}
	return string(runes[:limit]) + fmt.Sprintf("%s%d of %d chars shown; %s]", markerPrefix, limit, len(runes), guidance)
}
