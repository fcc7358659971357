package domain

import "strings"

// ToolRecord is the normalized view of one callable tool exposed by a
// provider. Inputs and Outputs carry the provider's declared JSON schemas;
// the human-readable interface text is rendered on demand by the registry.
type ToolRecord struct {
	Name        string
	Provider    string
	Description string
	Inputs      any
	Outputs     any
}

// ToolSnapshot is the immutable tool set published by the registry. It is
// replaced wholesale on refresh so concurrent readers never observe a
// partially updated set.
type ToolSnapshot struct {
	Records []ToolRecord
	Digest  string
	ETag    string
}

func CloneToolSnapshot(s ToolSnapshot) ToolSnapshot {
	out := s
	out.Records = append([]ToolRecord(nil), s.Records...)
	return out
}

// NormalizeToolName folds the separator and case conventions used across
// provider/tool/namespace delimiters into one flat token, so the same tool
// identity resolves regardless of spelling.
func NormalizeToolName(name string) string {
	replacer := strings.NewReplacer(".", "_", "-", "_", ":", "_", "/", "_")
	return strings.ToLower(replacer.Replace(strings.TrimSpace(name)))
}

// ProviderOf returns the provider namespace of a dot-qualified tool name,
// or "" when the name is unqualified.
func ProviderOf(name string) string {
	if i := strings.IndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return ""
}
