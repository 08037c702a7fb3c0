package synthesis

import (
	"strings"
	"unicode/utf8"

	"finnie/src/models"
)

const (
	// EmptyApology is returned when no responder output reached the synthesizer.
	EmptyApology = "I apologize, but I couldn't process your request. Please try again."
	// BlankApology is returned when every responder output was empty.
	BlankApology = "I apologize, but I couldn't generate a helpful response. Please try rephrasing your question."

	// Outputs shorter than this (in characters) are merged without a header in a two-output turn.
	shortOutputLimit = 500
	maxDisclaimers   = 2
)

type section struct {
	Emoji string
	Title string
}

var sections = map[models.Role]section{
	models.RoleQuant:     {"📊", "Market Data"},
	models.RoleProfessor: {"📚", "Explanation"},
	models.RoleAnalyst:   {"🔍", "Analysis"},
	models.RoleAdvisor:   {"💼", "Portfolio Insights"},
	models.RoleOracle:    {"🔮", "Projections"},
	models.RoleScout:     {"🌍", "Trending"},
}

// Header returns the section header for a role ("**📊 Market Data:**").
func Header(role models.Role) string {
	s, ok := sections[role]
	if !ok {
		s = section{"💡", "Insights"}
	}
	return "**" + s.Emoji + " " + s.Title + ":**"
}

// -----------------------------------------------------------------------------

// Synthesize merges ordered responder outputs into the final text.
//
// Stage outputs and empty texts are dropped. One remaining output passes
// through verbatim. Otherwise each text becomes a section: bare when there are
// at most two outputs and it is short, under a role header otherwise. Up to two
// disclaimers follow a separator, pipe-joined.
func Synthesize(outputs []models.MResponderOutput, disclaimers []string) string {
	if len(outputs) == 0 {
		return EmptyApology
	}

	content := make([]models.MResponderOutput, 0, len(outputs))
	for _, o := range outputs {
		if o.Text != "" && !o.Role.IsStage() {
			content = append(content, o)
		}
	}
	if len(content) == 0 {
		return BlankApology
	}

	var text string
	if len(content) == 1 {
		text = content[0].Text
	} else {
		parts := make([]string, 0, len(content))
		for _, o := range content {
			if len(content) <= 2 && utf8.RuneCountInString(o.Text) < shortOutputLimit {
				parts = append(parts, o.Text)
			} else {
				parts = append(parts, Header(o.Role)+"\n\n"+o.Text)
			}
		}
		text = strings.Join(parts, "\n\n")
	}

	return text + DisclaimerFooter(disclaimers)
}

// -----------------------------------------------------------------------------

// DisclaimerFooter renders the separator and the first two disclaimers, or ""
// when there are none.
func DisclaimerFooter(disclaimers []string) string {
	if len(disclaimers) == 0 {
		return ""
	}
	if len(disclaimers) > maxDisclaimers {
		disclaimers = disclaimers[:maxDisclaimers]
	}
	marked := make([]string, len(disclaimers))
	for i, d := range disclaimers {
		marked[i] = "⚠️ " + d
	}
	return "\n\n---\n" + strings.Join(marked, " | ")
}

// -----------------------------------------------------------------------------

// Run is the synthesis stage of a turn.
func Run(outputs []models.MResponderOutput, disclaimers []string) (models.MResponderOutput, string) {
	final := Synthesize(outputs, disclaimers)

	n := 0
	for _, o := range outputs {
		if o.Text != "" && !o.Role.IsStage() {
			n++
		}
	}
	return models.MResponderOutput{
		Role:           models.RoleScribe,
		StructuredData: map[string]interface{}{"sections": n},
	}, final
}
