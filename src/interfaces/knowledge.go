package interfaces

import "context"

// -----------------------------------------------------------------------------
// IKnowledgeBase supplies optional context text for generation prompts.
// A miss or an unavailable backend returns ("", false); callers omit the context.
// -----------------------------------------------------------------------------

type IKnowledgeBase interface {
	LookupConcept(ctx context.Context, name string) (string, bool)
	LookupCompany(ctx context.Context, ticker string) (string, bool)
	LookupSector(ctx context.Context, name string) (string, bool)
}
