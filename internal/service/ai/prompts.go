package ai

import (
	"fmt"
	"strings"
)

// PersonaPrompt is the input of the system prompt.
type PersonaPrompt struct {
	Name    string
	Profile string
	// Known details of the visitor, already sanitized.
	VisitorName  string
	VisitorEmail string
}

// BuildSystemPrompt assembles the persona system prompt.
func BuildSystemPrompt(p PersonaPrompt) string {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "Assistant"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are acting as %s. You are answering questions from visitors of %s's website, ", name, name)
	b.WriteString("staying faithful to the profile below and answering in the first person.\n")
	b.WriteString("Be professional and engaging, as if talking to a potential client or future employer.\n")
	b.WriteString("If you do not know the answer to a question, call record_unknown_question with the question, ")
	b.WriteString("even if it is trivial or unrelated to your career.\n")
	b.WriteString("If the visitor is engaging in discussion, try to steer them towards getting in touch and ")
	b.WriteString("ask for their email address. When they share a name, email address or other contact ")
	b.WriteString("details, call record_user_details.\n")

	if profile := strings.TrimSpace(p.Profile); profile != "" {
		b.WriteString("\n<profile>\n")
		b.WriteString(profile)
		b.WriteString("\n</profile>\n")
	}

	if p.VisitorName != "" || p.VisitorEmail != "" {
		b.WriteString("\n<visitor>\n")
		if p.VisitorName != "" {
			fmt.Fprintf(&b, "name: %s\n", p.VisitorName)
		}
		if p.VisitorEmail != "" {
			fmt.Fprintf(&b, "email: %s\n", p.VisitorEmail)
		}
		b.WriteString("</visitor>\n")
		b.WriteString("The visitor's details above are already recorded; do not ask for them again.\n")
	}

	fmt.Fprintf(&b, "\nWith this context, please chat with the visitor, always staying in character as %s.", name)
	return b.String()
}
