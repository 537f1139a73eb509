package seed

// File is the top-level structure of a seed file: a list of categories, each
// mapping a category name to its cards. Every card is a single-key map from
// the webpage name to its properties. Only the lists keep file order; see
// MapCards for how keys sharing a map are ordered.
//
//	- Math:
//	    - Desmos:
//	        href: https://www.desmos.com
//	        subjects: [Math]
type File []map[string][]map[string]CardProps

// CardProps holds the properties of one curated card.
type CardProps struct {
	Href      string   `yaml:"href"`
	Summary   string   `yaml:"summary,omitempty"`
	Subjects  []string `yaml:"subjects,omitempty"`
	Keywords  []string `yaml:"keywords,omitempty"`
	Meaning   string   `yaml:"meaning,omitempty"`
	Thumbnail string   `yaml:"thumbnail,omitempty"`
}
