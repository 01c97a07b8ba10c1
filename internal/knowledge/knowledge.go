// Package knowledge holds the external lookup collaborators used to turn a
// bare place name into structured facts and prose.
package knowledge

import "context"

// SearchHit is one entity match, with the search API's own label and
// description kept as fallbacks for when the structured query yields nothing.
type SearchHit struct {
	ID          string
	Label       string
	Description string
}

// LabelDescription is the structured-query view of an entity.
type LabelDescription struct {
	Label       string
	Description string
}

// KnowledgeBase is the entity search/query collaborator.
type KnowledgeBase interface {
	// SearchEntity returns the top match for text, or (nil, nil) when there
	// is none.
	SearchEntity(ctx context.Context, text, language string) (*SearchHit, error)
	// QueryLabelDescription returns the localized label and description for
	// an entity, or (nil, nil) when the query has no bindings.
	QueryLabelDescription(ctx context.Context, entityID, language string) (*LabelDescription, error)
	// QueryCoordinate returns the entity's coordinate as an opaque geo
	// string, or "" when it has none.
	QueryCoordinate(ctx context.Context, entityID string) (string, error)
}

// Encyclopedia is the prose summary collaborator. Ambiguous or missing pages
// are reported as an empty summary, not an error.
type Encyclopedia interface {
	Summarize(ctx context.Context, title string, sentences int) (string, error)
}
