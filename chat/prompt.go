package chat

import (
	"fmt"
	"strings"

	"github.com/priyanshu2307/Newschat/provider"
	"github.com/priyanshu2307/Newschat/session/session_models"
)

const systemInstruction = `You are a helpful assistant that answers questions about news articles.
Base your answers solely on the provided context information.
If you don't know the answer based on the provided context, say "I don't have enough information to answer that question."
Be concise but comprehensive in your responses.`

// BuildPrompt composes the generation prompt: the grounding instruction with
// each retrieved passage labeled individually, plus the prior turns replayed
// in order. With zero contexts the instruction stands alone and the model is
// expected to state insufficiency.
func BuildPrompt(query string, contexts []string, history []session_models.Message) provider.Prompt {
	var sb strings.Builder
	sb.WriteString(systemInstruction)
	sb.WriteString("\n\nContext information:\n")
	for i, ctx := range contexts {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Article %d: %s", i+1, ctx)
	}

	turns := make([]provider.Turn, 0, len(history))
	for _, msg := range history {
		role := provider.RoleUser
		if msg.Role == session_models.RoleAssistant {
			role = provider.RoleAssistant
		}
		turns = append(turns, provider.Turn{Role: role, Content: msg.Content})
	}

	return provider.Prompt{
		System:  sb.String(),
		History: turns,
		Query:   query,
	}
}
