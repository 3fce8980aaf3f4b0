package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/briangreenhill/zepsite/internal/content"
)

// FileStore implements the Store interface using a JSON file on disk.
// Reads fall back to a read-only snapshot (the file bundled with the site)
// when the writable copy is missing or unparsable.
type FileStore struct {
	path     string
	snapshot string
	key      string
	log      zerolog.Logger
}

type Option func(*FileStore)

// WithSnapshot sets the bundled read-only copy used when path is absent.
func WithSnapshot(path string) Option {
	return func(fs *FileStore) { fs.snapshot = path }
}

// WithKey sets the top-level key the document is nested under.
func WithKey(key string) Option {
	return func(fs *FileStore) {
		if key != "" {
			fs.key = key
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(fs *FileStore) { fs.log = l }
}

// NewFileStore creates a store writing to path
func NewFileStore(path string, opts ...Option) *FileStore {
	fs := &FileStore{
		path: path,
		key:  content.DefaultBandKey,
		log:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(fs)
	}
	return fs
}

// Path returns the writable location
func (fs *FileStore) Path() string {
	return fs.path
}

// Load implements Loader interface
func (fs *FileStore) Load() *content.Document {
	root, source, err := fs.readRoot()
	if err != nil {
		fs.log.Warn().Err(err).Str("path", fs.path).Msg("no readable content cache, using defaults")
		return content.Empty()
	}

	raw, ok := root[fs.key]
	if !ok {
		fs.log.Warn().Str("source", source).Str("key", fs.key).Msg("content cache has no band key, using defaults")
		return content.Empty()
	}

	doc := content.Empty()
	if err := json.Unmarshal(raw, doc); err != nil {
		fs.log.Warn().Err(err).Str("source", source).Msg("content cache is corrupt, using defaults")
		return content.Empty()
	}
	doc.Normalize()
	return doc
}

// Save implements Saver interface. Other top-level keys already in the file
// are kept.
func (fs *FileStore) Save(doc *content.Document) error {
	data, err := fs.encode(doc)
	if err != nil {
		fs.log.Error().Err(err).Msg("encode content cache")
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fs.path), 0o755); err != nil {
		fs.log.Error().Err(err).Str("path", fs.path).Msg("create cache dir")
		return err
	}

	// Write to temporary file first, then rename (atomic operation)
	tmpPath := fs.path + fmt.Sprintf(".tmp.%d", rand.Int())
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		fs.log.Error().Err(err).Str("path", tmpPath).Msg("write content cache")
		return err
	}
	if err := os.Rename(tmpPath, fs.path); err != nil {
		_ = os.Remove(tmpPath)
		fs.log.Error().Err(err).Str("path", fs.path).Msg("replace content cache")
		return err
	}
	return nil
}

// ModTime implements ModTimer interface. The snapshot's time is used when
// the writable copy has never been written.
func (fs *FileStore) ModTime() (time.Time, bool) {
	for _, p := range fs.candidates() {
		if info, err := os.Stat(p); err == nil {
			return info.ModTime(), true
		}
	}
	return time.Time{}, false
}

// Raw returns the whole file as it would be served: the envelope with the
// document under the band key, defaults filled in.
func (fs *FileStore) Raw() ([]byte, error) {
	return fs.encode(fs.Load())
}

func (fs *FileStore) encode(doc *content.Document) ([]byte, error) {
	root, _, err := fs.readRoot()
	if err != nil {
		root = map[string]json.RawMessage{}
	}

	var docBuf bytes.Buffer
	docEnc := json.NewEncoder(&docBuf)
	docEnc.SetEscapeHTML(false)
	if err := docEnc.Encode(doc); err != nil {
		return nil, err
	}
	root[fs.key] = bytes.TrimRight(docBuf.Bytes(), "\n")

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (fs *FileStore) candidates() []string {
	if fs.snapshot == "" || fs.snapshot == fs.path {
		return []string{fs.path}
	}
	return []string{fs.path, fs.snapshot}
}

// readRoot returns the first candidate file that parses as a JSON object.
func (fs *FileStore) readRoot() (map[string]json.RawMessage, string, error) {
	var errs []error
	for _, p := range fs.candidates() {
		data, err := os.ReadFile(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		var root map[string]json.RawMessage
		if err := json.Unmarshal(data, &root); err != nil {
			errs = append(errs, fmt.Errorf("parse %s: %w", p, err))
			continue
		}
		if root == nil {
			errs = append(errs, fmt.Errorf("parse %s: not a JSON object", p))
			continue
		}
		return root, p, nil
	}
	return nil, "", errors.Join(errs...)
}
