package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hashmun/hashmun/backend/internal/model/roster"
)

const assistantBrief = `You are HASHMUN AI, an intelligent assistant for Model UN conference organizers.

Logic:
1. If the user asks to "create mocks", "generate mock data", or similar, set "type" to "data".
2. TEAMS (TABS): Organize delegates into TEAMS. DEFAULT to naming them "Team A", "Team B", "Team C" sequentially unless the user specifically requests names like "Delegation 1" or "Lahore Grammar School".
3. COMMITTEES: Each delegate still belongs to a committee (e.g. UNSC). This is just a column in the table.
4. HEAD DELEGATES: You can assign the status "Head Delegate".
5. DATA MODIFICATION: If existing table data is provided and the user asks to modify it (e.g., "Change Ali to France", "Add Team C"), YOU MUST return the COMPLETE updated dataset in the "data" field. Use the existing data as the base. Keep every existing delegate "id" unchanged.
6. CHAT: If the user simply chats, set "type" to "chat".

Context: "Allotment" replaces Country. "Class" replaces School (e.g. "10-A", "A2", "O3").`

const responseContract = `Respond with a single JSON object and nothing else. No prose outside the JSON, no markdown fences.

Shape:
{
  "type": "chat" | "data",           // required discriminator
  "message": string,                 // conversational response; if data is generated or updated, briefly mention it
  "data": {                          // required when type is "data", omitted otherwise
    "conferenceName": string,
    "delegates": [
      {
        "id": string,                // keep existing ids; leave empty for new rows
        "name": string,              // required
        "allotment": string,         // required; country or portfolio assigned
        "committee": string,         // required; committee name, e.g. "UNSC", "DISEC"
        "class": string,             // optional student class/grade
        "status": "Allocated" | "Pending" | "Waitlist" | "Head Delegate",
        "team": string               // required team name
      }
    ]
  }
}`

// buildSystemPrompt assembles the full instruction block, embedding the
// current roster so the model can perform incremental edits instead of
// regenerating from scratch.
func buildSystemPrompt(current *roster.Snapshot) string {
	var b strings.Builder
	b.WriteString(assistantBrief)
	b.WriteString("\n\n")
	b.WriteString(responseContract)
	b.WriteString("\n\nCurrent Existing Table Data (JSON): ")
	b.WriteString(snapshotJSON(current))
	return b.String()
}

func snapshotJSON(current *roster.Snapshot) string {
	if current == nil {
		return "None"
	}
	data, err := json.Marshal(current)
	if err != nil {
		// A snapshot of plain structs cannot fail to marshal; keep the
		// call going if it somehow does.
		return fmt.Sprintf("None (marshal error: %v)", err)
	}
	return string(data)
}
