package persona

import (
	"fmt"
	"strings"

	"github.com/character-quiz/backend/internal/models"
)

const (
	userSpeaker = "User"

	// maxHistoryTurns bounds how much of the conversation is replayed to the
	// model on each message.
	maxHistoryTurns = 10
)

// Turn is one exchange line in a conversation transcript.
type Turn struct {
	Speaker string
	Text    string
}

// SystemPrompt tells the model to speak as the character.
func SystemPrompt(p models.CharacterProfile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. Stay in character for the whole conversation and answer as %s would.\n", p.Name, p.Name)

	section(&b, "BIOGRAPHY", p.Bio)
	section(&b, "KNOWLEDGE", p.Knowledge)
	section(&b, "LORE", p.Lore)
	if len(p.Topics) > 0 {
		fmt.Fprintf(&b, "\nTOPICS YOU ENJOY: %s\n", strings.Join(p.Topics, ", "))
	}
	section(&b, "STYLE", p.Style.All)

	b.WriteString(`
RULES:
- Keep replies short, a few sentences at most.
- Never invent facts that contradict the biography above.
- If asked about a quiz, tell the user to type "start quiz".
`)
	return b.String()
}

func section(b *strings.Builder, title string, lines []string) {
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			fmt.Fprintf(b, "- %s\n", l)
		}
	}
}

// BuildUserPrompt replays recent history followed by the new message. The
// new message is always the last line.
func BuildUserPrompt(characterName string, history []Turn, message string) string {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "%s: %s\n", t.Speaker, t.Text)
		}
		fmt.Fprintf(&b, "\nReply as %s to the last message.\n", characterName)
	}
	fmt.Fprintf(&b, "%s: %s", userSpeaker, message)
	return b.String()
}
