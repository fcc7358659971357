package router

import (
	"fmt"
	"strings"

	"github.com/mochadwi/utcp-mcp-gateway/internal/domain"
)

const rankingSystemPrompt = `You rank tools by relevance to a task.
You are given a task description and a catalog of tools, one per line.
Reply with a comma-separated list of tool names from the catalog, most
relevant first. Use the names exactly as written. If no tool is relevant,
reply with the single word: none. Do not explain your choice.`

func rankingUserPrompt(query string, records []domain.ToolRecord, limit int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task: %s\n\nCatalog:\n", query)
	for _, record := range records {
		fmt.Fprintf(&b, "- %s: %s\n", record.Name, briefDescription(record.Description))
	}
	fmt.Fprintf(&b, "\nReturn at most %d names.", limit)
	return b.String()
}

func briefDescription(description string) string {
	description = strings.Join(strings.Fields(description), " ")
	runes := []rune(description)
	if len(runes) > domain.RouterDescriptionChars {
		return string(runes[:domain.RouterDescriptionChars])
	}
	return description
}

// parseRankedNames tolerates the formatting drift completion models
// produce around a name list: code fences, bullet markers, newlines in
// place of commas, and surrounding whitespace.
func parseRankedNames(content string) []string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if strings.EqualFold(content, "none") {
		return nil
	}

	fields := strings.FieldsFunc(content, func(r rune) bool {
		return r == ',' || r == '\n'
	})
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(field), "-* "))
		if name == "" || strings.EqualFold(name, "none") {
			continue
		}
		names = append(names, name)
	}
	return names
}

// resolveRanked maps ranked names back onto catalog records, dropping
// names the model invented and duplicates it repeated.
func resolveRanked(names []string, records []domain.ToolRecord, limit int) []domain.ToolRecord {
	byNormalized := make(map[string]domain.ToolRecord, len(records))
	for _, record := range records {
		byNormalized[domain.NormalizeToolName(record.Name)] = record
	}

	seen := make(map[string]struct{}, len(names))
	out := make([]domain.ToolRecord, 0, limit)
	for _, name := range names {
		key := domain.NormalizeToolName(name)
		record, ok := byNormalized[key]
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, record)
		if len(out) == limit {
			break
		}
	}
	return out
}
