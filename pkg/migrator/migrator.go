// Package migrator loads schema migration files from a directory.
//
// Migration files carry the .schema extension and a sortable name prefix
// (typically a timestamp), so lexical order is application order. Files are
// discovered and size-checked before any of them is parsed: oversized input
// is rejected up front rather than partway through a run.
package migrator

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/schemerhq/schemer/pkg/consts"
	"github.com/schemerhq/schemer/pkg/parser"
)

type (
	// Limits bounds the size of migration input. Zero values mean no bound
	// for that dimension; the whole check is skipped unless Enabled.
	Limits struct {
		Enabled       bool
		MaxFileBytes  int64
		MaxTotalBytes int64
	}

	// File is a single discovered migration: its name relative to the
	// migrations directory and its raw content.
	File struct {
		Name    string
		Content []byte
	}

	// Dir is the set of migration files found in a directory, in lexical
	// (and therefore chronological) order.
	Dir struct {
		Files []*File
	}
)

// LoadDir discovers every .schema file in fsys, enforcing limits before any
// content is parsed. Subdirectories are walked; non-schema files are
// ignored. WalkDir visits entries in lexical order, which fixes application
// order without an explicit sort.
func LoadDir(fsys fs.FS, limits Limits) (*Dir, error) {
	dir := &Dir{}
	var total int64

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != consts.SchemaExtension {
			return nil
		}

		if limits.Enabled {
			info, err := d.Info()
			if err != nil {
				return errors.Wrapf(err, "failed to stat migration: %s", path)
			}

			if limits.MaxFileBytes > 0 && info.Size() > limits.MaxFileBytes {
				return errors.Errorf(
					"migration %s is %d bytes, exceeding the per-file limit of %d",
					path, info.Size(), limits.MaxFileBytes,
				)
			}

			total += info.Size()
			if limits.MaxTotalBytes > 0 && total > limits.MaxTotalBytes {
				return errors.Errorf(
					"migrations exceed the total size limit of %d bytes at %s",
					limits.MaxTotalBytes, path,
				)
			}
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return errors.Wrapf(err, "failed to read migration: %s", path)
		}

		dir.Files = append(dir.Files, &File{Name: path, Content: content})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load migrations")
	}

	return dir, nil
}

// Parse runs the schema parser over the file content. Parse errors are
// prefixed with the filename so multi-file runs point at the right source.
func (f *File) Parse() (*parser.Schema, error) {
	schema, err := parser.ParseString(string(f.Content))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", f.Name)
	}
	return schema, nil
}

// Filenames returns the discovered names in load order.
func (d *Dir) Filenames() []string {
	names := make([]string, len(d.Files))
	for i, f := range d.Files {
		names[i] = f.Name
	}
	return names
}

// Contents returns name-to-content for every discovered file, the shape the
// ledger's integrity check consumes.
func (d *Dir) Contents() map[string][]byte {
	contents := make(map[string][]byte, len(d.Files))
	for _, f := range d.Files {
		contents[f.Name] = f.Content
	}
	return contents
}

// File returns the named file, or nil when it was not discovered.
func (d *Dir) File(name string) *File {
	for _, f := range d.Files {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// SanitizeName converts a human-entered migration description into a safe
// filename fragment: lowercased, spaces and punctuation collapsed to single
// underscores, anything else dropped.
func SanitizeName(name string) string {
	var b strings.Builder
	lastUnderscore := true

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "_")
}
