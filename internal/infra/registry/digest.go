package registry

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

// buildDigest groups tool records by provider and lists up to
// DigestToolNamesPerProvider tool names per group, with a "(+N more)"
// suffix when a group is larger.
func buildDigest(records []domain.ToolRecord) string {
	if len(records) == 0 {
		return "no tools are currently registered"
	}

	byProvider := make(map[string][]string)
	for _, record := range records {
		byProvider[record.Provider] = append(byProvider[record.Provider], record.Name)
	}

	providers := make([]string, 0, len(byProvider))
	for provider := range byProvider {
		providers = append(providers, provider)
	}
	sort.Strings(providers)

	var b strings.Builder
	for _, provider := range providers {
		names := byProvider[provider]
		shown := names
		if len(shown) > domain.DigestToolNamesPerProvider {
			shown = shown[:domain.DigestToolNamesPerProvider]
		}
		fmt.Fprintf(&b, "%s: %s", provider, strings.Join(shown, ", "))
		if rest := len(names) - len(shown); rest > 0 {
			fmt.Fprintf(&b, " (+%d more)", rest)
		}
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func briefOf(description string) string {
	description = strings.Join(strings.Fields(description), " ")
	if utf8.RuneCountInString(description) <= domain.RouterDescriptionChars {
		return description
	}
	runes := []rune(description)
	return string(runes[:domain.RouterDescriptionChars]) + "..."
}

func renderInterface(record domain.ToolRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tool: %s\n", record.Name)
	if record.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", record.Description)
	}
	b.WriteString("Inputs:\n")
	b.WriteString(renderSchema(record.Inputs))
	b.WriteString("Outputs:\n")
	b.WriteString(renderSchema(record.Outputs))
	return b.String()
}

func renderSchema(schema any) string {
	if schema == nil {
		return "  (none declared)\n"
	}
	raw, err := json.MarshalIndent(schema, "  ", "  ")
	if err != nil {
		return "  (not renderable)\n"
	}
	return "  " + string(raw) + "\n"
}
