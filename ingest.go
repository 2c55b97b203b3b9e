package pubstatic

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/inful/mdfp"

	"github.com/eringen/pubstatic/markdown"
)

var nodeNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/eringen/pubstatic/nodes"))

// NodeID returns the stable ID of the node of kind built from a source file.
func NodeID(kind, relPath string) string {
	return uuid.NewSHA1(nodeNamespace, []byte(kind+":"+filepath.ToSlash(relPath))).String()
}

// IngestStats summarizes one ingestion pass.
type IngestStats struct {
	Created   int
	Updated   int
	Unchanged int
	Deleted   int
}

// Ingester turns the files under Dir into stored nodes and runs the slug
// deriver on every node it creates or updates.
type Ingester struct {
	Store         *NodeStore
	Dir           string
	Ignore        []string
	ExcerptLength int
	// Force rewrites every node even when its content digest is unchanged.
	Force  bool
	Logger *slog.Logger
}

// Run walks Dir, upserts changed nodes and deletes nodes whose source file
// is gone.
func (in *Ingester) Run(ctx context.Context) (IngestStats, error) {
	var stats IngestStats
	log := in.Logger
	if log == nil {
		log = slog.Default()
	}

	for _, pattern := range in.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return stats, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}

	previous, err := in.Store.NodeDigests(ctx)
	if err != nil {
		return stats, fmt.Errorf("load node digests: %w", err)
	}
	seen := make(map[string]struct{})

	walkErr := filepath.WalkDir(in.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(in.Dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") || in.ignored(filepath.ToSlash(rel)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		for _, node := range in.nodesFor(rel, data, log) {
			seen[node.ID] = struct{}{}
			if err := in.upsert(ctx, node, previous, &stats); err != nil {
				return err
			}
		}
		return nil
	})
	if walkErr != nil {
		return stats, fmt.Errorf("walk %s: %w", in.Dir, walkErr)
	}

	for id := range previous {
		if _, ok := seen[id]; ok {
			continue
		}
		if err := in.Store.DeleteNode(ctx, id); err != nil {
			return stats, fmt.Errorf("delete stale node %s: %w", id, err)
		}
		log.Debug("Deleted stale node", slog.String(KeyNodeID, id))
		stats.Deleted++
	}
	return stats, nil
}

func (in *Ingester) ignored(rel string) bool {
	for _, pattern := range in.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func (in *Ingester) upsert(ctx context.Context, node ContentNode, previous map[string]string, stats *IngestStats) error {
	digest, existed := previous[node.ID]
	if existed && digest == node.Internal.ContentDigest && !in.Force {
		stats.Unchanged++
		return nil
	}
	var fields []NodeField
	if field, ok := DeriveSlug(node); ok {
		fields = append(fields, field)
	}
	if err := in.Store.SaveNodeWithFields(ctx, node, fields...); err != nil {
		return fmt.Errorf("save node %s: %w", node.SourcePath, err)
	}
	if existed {
		stats.Updated++
	} else {
		stats.Created++
	}
	return nil
}

// nodesFor builds the File node for a source file and, for Markdown and
// MDX sources, its Mdx child node.
func (in *Ingester) nodesFor(rel string, data []byte, log *slog.Logger) []ContentNode {
	ext := strings.ToLower(filepath.Ext(rel))
	file := ContentNode{
		ID: NodeID(KindFile, rel),
		Internal: NodeInternal{
			Type:          KindFile,
			MediaType:     mediaType(ext),
			ContentDigest: mdfp.CalculateFingerprintFromParts("", string(data)),
		},
		SourcePath: filepath.ToSlash(rel),
	}
	if ext != ".md" && ext != ".mdx" {
		return []ContentNode{file}
	}
	return []ContentNode{file, in.mdxNode(file, ext, data, log)}
}

func (in *Ingester) mdxNode(file ContentNode, ext string, data []byte, log *slog.Logger) ContentNode {
	rawFM, body, _, err := SplitFrontmatter(data)
	if err != nil {
		log.Warn("Could not split frontmatter, treating file as body",
			slog.String(KeyPath, file.SourcePath), errorAttr(err))
		rawFM, body = nil, data
	}
	fm, err := ParseFrontmatter(rawFM)
	if err != nil {
		log.Warn("Could not parse frontmatter, using empty frontmatter",
			slog.String(KeyPath, file.SourcePath), errorAttr(err))
		fm = Frontmatter{}
	}

	content := string(body)
	if ext == ".mdx" {
		content = markdown.StripMDXStatements(content)
	}
	plain := markdown.PlainText(content)

	return ContentNode{
		ID:     NodeID(KindMdx, file.SourcePath),
		Parent: file.ID,
		Internal: NodeInternal{
			Type:          KindMdx,
			MediaType:     file.Internal.MediaType,
			ContentDigest: in.mdxDigest(rawFM, body),
		},
		Frontmatter: fm,
		Fields:      map[string]any{},
		Body:        content,
		SourcePath:  file.SourcePath,
		Excerpt:     markdown.Excerpt(plain, in.ExcerptLength),
		TimeToRead:  markdown.TimeToRead(plain),
	}
}

// mdxDeriverVersion changes whenever the fields derived from an Mdx body
// change shape, so stored nodes are rebuilt.
const mdxDeriverVersion = "1"

// mdxDigest fingerprints the source together with the settings that shape
// the derived excerpt and time to read.
func (in *Ingester) mdxDigest(rawFM, body []byte) string {
	fp := mdfp.CalculateFingerprintFromParts(string(rawFM), string(body))
	return fmt.Sprintf("v%s-x%d-%s", mdxDeriverVersion, in.ExcerptLength, fp)
}

func mediaType(ext string) string {
	switch ext {
	case ".md":
		return "text/markdown"
	case ".mdx":
		return "text/mdx"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// errNoContentDir is returned when the content directory is missing.
var errNoContentDir = errors.New("content directory not found")
