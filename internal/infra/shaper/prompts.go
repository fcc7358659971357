package shaper

import "fmt"

const genericSummarySystemPrompt = `You compress tool output for a coding agent. Rewrite the provided content so it fits the stated character budget while preserving its structure, ordering, and every concrete fact needed to act on it. Output only the compressed content, no commentary.`

// purposeSummarySystemPrompt binds the model to the caller's stated purpose.
func purposeSummarySystemPrompt(purpose string, budget int) string {
	return fmt.Sprintf(`You extract information from tool output for a coding agent.
The agent's purpose: %s
Keep only information relevant to that purpose. Stay under %d characters. If the content looks like structured data (JSON, CSV, tables), retain the key identifying field names alongside the values you keep. Output only the extracted content, no commentary.`, purpose, budget)
}

func summaryUserPrompt(content string, budget int) string {
	return fmt.Sprintf("Character budget: %d\n\nContent:\n%s", budget, content)
}
