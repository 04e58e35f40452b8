package loader

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/mirrorlink/mirrorlink/internal/model"
)

// DefaultExtension is the filename extension documents are expected to carry.
const DefaultExtension = ".html"

// fallbackEncodings are tried in order when a body is not valid UTF-8.
// Windows-1252 is a superset of ISO-8859-1 in the printable range, but both
// are kept so the fallback chain stays explicit.
var fallbackEncodings = []struct {
	name string
	enc  encoding.Encoding
}{
	{"windows-1252", charmap.Windows1252},
	{"iso-8859-1", charmap.ISO8859_1},
}

// Loader reads and writes documents for one pair of tree directories.
type Loader struct {
	// ext is the filename extension that identifies documents.
	ext string

	// backupSuffix, when non-empty, makes WriteDocument keep a copy of the
	// original file under name+backupSuffix before replacing it.
	backupSuffix string
}

// Option configures a Loader.
type Option func(*Loader)

// WithExtension sets the document filename extension.
func WithExtension(ext string) Option {
	return func(l *Loader) {
		if ext != "" {
			l.ext = ext
		}
	}
}

// WithBackupSuffix enables backup copies before a document is replaced.
// An empty suffix disables backups (the default).
func WithBackupSuffix(suffix string) Option {
	return func(l *Loader) {
		l.backupSuffix = suffix
	}
}

// New creates a Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{ext: DefaultExtension}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ListTree returns the document filenames in dir, lexicographically sorted.
// Subdirectories and files without the document extension are skipped.
// Sorted output is what makes scan and repair runs reproducible.
func (l *Loader) ListTree(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat tree directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list tree directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, l.ext) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ReadDocument reads a single document from dir and decodes its body.
func (l *Loader) ReadDocument(tree model.Tree, dir, name string) (*model.Document, error) {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", name, err)
	}

	body, err := decodeBody(raw)
	if err != nil {
		return nil, fmt.Errorf("document %s: %w", name, err)
	}
	return model.NewDocument(tree, name, body), nil
}

// LoadTree reads every document in dir, in the order ListTree reports them.
func (l *Loader) LoadTree(tree model.Tree, dir string) ([]*model.Document, error) {
	names, err := l.ListTree(dir)
	if err != nil {
		return nil, err
	}

	docs := make([]*model.Document, 0, len(names))
	for _, name := range names {
		doc, err := l.ReadDocument(tree, dir, name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// WriteDocument replaces the document's file in dir with its current body.
// The body is written to a temporary file in the same directory and moved
// into place with a rename, so a crash never leaves a half-written document.
func (l *Loader) WriteDocument(dir string, doc *model.Document) error {
	target := filepath.Join(dir, doc.Name)

	mode := os.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
		if l.backupSuffix != "" {
			if err := copyFile(target, target+l.backupSuffix, mode); err != nil {
				return fmt.Errorf("failed to back up document %s: %w", doc.Name, err)
			}
		}
	}

	tmp, err := os.CreateTemp(dir, "."+doc.Name+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", doc.Name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(doc.Body); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write document %s: %w", doc.Name, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set mode on %s: %w", doc.Name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temporary file for %s: %w", doc.Name, err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace document %s: %w", doc.Name, err)
	}
	return nil
}

// WriteChanged writes back every document whose Changed flag is set and
// returns how many were written. Unchanged documents are never touched.
func (l *Loader) WriteChanged(dir string, docs []*model.Document) (int, error) {
	written := 0
	for _, doc := range docs {
		if !doc.Changed {
			continue
		}
		if err := l.WriteDocument(dir, doc); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// decodeBody decodes raw bytes into a string, trying UTF-8 first and then
// the single-byte fallback encodings in fixed order.
func decodeBody(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	for _, fb := range fallbackEncodings {
		decoded, err := fb.enc.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}
		return string(decoded), nil
	}
	return "", ErrUndecodableBody
}

// copyFile copies src to dst with the given mode. Used for backups.
func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
