package tardis

import (
	"crypto/md5" // #nosec G501 -- file name disambiguation, not security
	"encoding/hex"
	"path/filepath"

	"github.com/ETML-INF/tardis-pipelines/internal/fileutil"
)

const (
	fingerprintLen = 6
	cardsSuffix    = "-cards"
	pdfExt         = ".pdf"
)

// Fingerprint returns the first six hex digits of the MD5 of a
// slash-separated relative path.
func Fingerprint(relPath string) string {
	sum := md5.Sum([]byte(relPath)) // #nosec G401
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}

// OutputTarget is where one PDF is written.
type OutputTarget struct {
	Bucket   Bucket
	Filename string
	Path     string // OutputRoot/Bucket/Filename
	RelPath  string // source document relative path
}

// Rel returns "bucket/filename".
func (t OutputTarget) Rel() string {
	return string(t.Bucket) + "/" + t.Filename
}

// NameResolver picks output file names. <base>.pdf is used unless a file
// already exists there or the name was handed out earlier in the run;
// then <base>-<fingerprint>.pdf is used without a further existence check.
// It is not safe for concurrent use.
type NameResolver struct {
	root  string
	taken map[string]struct{}
}

// NewNameResolver creates a resolver writing under outputRoot.
func NewNameResolver(outputRoot string) *NameResolver {
	return &NameResolver{root: outputRoot, taken: map[string]struct{}{}}
}

// Resolve names the full-document PDF in the document's bucket.
func (r *NameResolver) Resolve(doc SourceDocument) OutputTarget {
	return r.resolve(doc.Bucket, doc.BaseName(), doc.RelPath)
}

// ResolveCards names the card-sheet PDF in the cards bucket.
func (r *NameResolver) ResolveCards(doc SourceDocument) OutputTarget {
	return r.resolve(BucketCards, doc.BaseName()+cardsSuffix, doc.RelPath)
}

func (r *NameResolver) resolve(bucket Bucket, base, relPath string) OutputTarget {
	dir := filepath.Join(r.root, string(bucket))
	name := base + pdfExt
	if r.isTaken(bucket, name) || fileutil.FileExists(filepath.Join(dir, name)) {
		name = base + "-" + Fingerprint(relPath) + pdfExt
	}
	r.taken[string(bucket)+"/"+name] = struct{}{}
	return OutputTarget{
		Bucket:   bucket,
		Filename: name,
		Path:     filepath.Join(dir, name),
		RelPath:  relPath,
	}
}

func (r *NameResolver) isTaken(bucket Bucket, name string) bool {
	_, ok := r.taken[string(bucket)+"/"+name]
	return ok
}
