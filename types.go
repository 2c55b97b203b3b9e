package pubstatic

import "time"

// Node kinds produced by ingestion.
const (
	KindFile = "File"
	KindMdx  = "Mdx"
)

// Template identifiers handed to the renderer.
const (
	TemplatePost     = "post"
	TemplateCategory = "category"
)

// Frontmatter is the parsed metadata block of a document. Keys are kept
// verbatim so presence can be told apart from an empty value.
type Frontmatter map[string]any

// Has reports whether key is present, regardless of its value.
func (f Frontmatter) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// NodeInternal carries bookkeeping owned by the ingestion layer.
type NodeInternal struct {
	Type          string
	MediaType     string
	ContentDigest string
}

// ContentNode is one ingested source document.
type ContentNode struct {
	ID          string
	Parent      string
	Internal    NodeInternal
	Frontmatter Frontmatter
	Fields      map[string]any
	Body        string
	SourcePath  string
	Excerpt     string
	TimeToRead  int
}

// NodeField is a derived field to attach to a node. A nil Value is stored
// as an explicit null.
type NodeField struct {
	NodeID string
	Name   string
	Value  any
}

// PostNode is the projection of an Mdx node returned by QueryPosts.
type PostNode struct {
	ID         string    `json:"id"`
	Slug       string    `json:"slug"`
	Title      string    `json:"title"`
	Date       time.Time `json:"date"`
	Categories []string  `json:"categories"`
	Excerpt    string    `json:"excerpt,omitempty"`
	TimeToRead int       `json:"timeToRead,omitempty"`
}

// Page describes one page to render.
type Page struct {
	Path     string `json:"path"`
	Template string `json:"template"`
	Context  any    `json:"context"`
}

// PostContext is the context of a post page. Prev is the next-older post
// and Next the next-newer one, by position in the date-descending list.
type PostContext struct {
	Slug string    `json:"slug"`
	Prev *PostNode `json:"prev"`
	Next *PostNode `json:"next"`
}

// CategoryContext is the context of a category page.
type CategoryContext struct {
	Category string `json:"category"`
}

// QueryResult mirrors a query response: data plus any errors the query
// layer collected while producing it.
type QueryResult struct {
	Posts  []PostNode
	Errors []error
}
