// Package sheet holds the listener's view of the import platform's data
// model: workspaces, sheets, records and the declared blueprint. All state
// lives on the platform; these types only describe it on the wire.
package sheet

// Sheet is a schema-bound collection of records within a workspace
type Sheet struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// Workspace is a top-level container for one import session
type Workspace struct {
	ID            string  `json:"id"`
	EnvironmentID string  `json:"environment_id"`
	Name          string  `json:"name"`
	Sheets        []Sheet `json:"sheets,omitempty"`
}

// FindBySlug returns the sheet with the given slug, if any. Slug lookup is
// deliberate: positional indexing into the sheet list breaks silently when
// the platform reorders it.
func FindBySlug(sheets []Sheet, slug string) (Sheet, bool) {
	for _, s := range sheets {
		if s.Slug == slug {
			return s, true
		}
	}
	return Sheet{}, false
}
