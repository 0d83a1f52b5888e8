package tardis

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Bucket is an output subdirectory.
type Bucket string

// Output buckets.
const (
	BucketExercises Bucket = "exercises"
	BucketSolutions Bucket = "solutions"
	BucketCards     Bucket = "cards"
)

const (
	sourceExt    = ".md"
	renderedExt  = ".html"
	indexName    = "index.md"
	exercisesDir = "exercises"
	solutionsDir = "solutions"
)

// SourceDocument is one exercise source file and where its rendered page
// is expected.
type SourceDocument struct {
	Path         string // source file, as found under the source root
	RelPath      string // slash-separated, relative to the source root
	RenderedPath string
	Bucket       Bucket
}

// BaseName returns the file name without the .md extension.
func (d SourceDocument) BaseName() string {
	name := filepath.Base(d.Path)
	return name[:len(name)-len(filepath.Ext(name))]
}

// Discover walks sourceRoot in lexical order and returns the exercise
// sources. A file qualifies when it ends in .md, is not index.md, and
// either a directory on its path is named "exercises" or its parent
// directory is "solutions" (all comparisons case-insensitive).
// A missing or unreadable root returns ErrSourceRoot; errors below the
// root are returned as is.
func Discover(sourceRoot, renderedRoot string) ([]SourceDocument, error) {
	info, err := os.Stat(sourceRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: not a directory: %s", ErrSourceRoot, sourceRoot)
	}
	if _, err := os.ReadDir(sourceRoot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceRoot, err)
	}

	rootSegments := pathSegments(sourceRoot)

	var docs []SourceDocument
	err = filepath.WalkDir(sourceRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), sourceExt) || strings.EqualFold(d.Name(), indexName) {
			return nil
		}

		rel, err := filepath.Rel(sourceRoot, path)
		if err != nil {
			return err
		}
		dirs := slices.Concat(rootSegments, pathSegments(filepath.Dir(rel)))
		parent := ""
		if len(dirs) > 0 {
			parent = dirs[len(dirs)-1]
		}
		if !containsFold(dirs, exercisesDir) && !strings.EqualFold(parent, solutionsDir) {
			return nil
		}

		bucket := BucketExercises
		if strings.EqualFold(parent, solutionsDir) {
			bucket = BucketSolutions
		}
		renderedRel := rel[:len(rel)-len(filepath.Ext(rel))] + renderedExt
		docs = append(docs, SourceDocument{
			Path:         path,
			RelPath:      filepath.ToSlash(rel),
			RenderedPath: filepath.Join(renderedRoot, renderedRel),
			Bucket:       bucket,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", sourceRoot, err)
	}
	return docs, nil
}

// pathSegments splits a cleaned path into its directory names.
func pathSegments(path string) []string {
	clean := filepath.ToSlash(filepath.Clean(path))
	var out []string
	for _, s := range strings.Split(clean, "/") {
		if s != "" && s != "." {
			out = append(out, s)
		}
	}
	return out
}

func containsFold(items []string, want string) bool {
	for _, s := range items {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}
