package concept

// Question is a comprehension question attached to a topic.
type Question struct {
	Text string
}

// Resource is a learning resource attached to a topic. List fields are
// never nil on resources built by [NormalizeResource].
type Resource struct {
	Title        string
	Location     string
	URL          string
	ResourceType string
	Free         bool
	Edition      string
	Authors      []string
	Dependencies []string
	Mark         []string
	Extra        []string
	Note         []string
}

// NormalizeResource replaces nil list fields with empty slices.
func NormalizeResource(r Resource) Resource {
	for _, f := range []*[]string{&r.Authors, &r.Dependencies, &r.Mark, &r.Extra, &r.Note} {
		if *f == nil {
			*f = []string{}
		}
	}
	return r
}
