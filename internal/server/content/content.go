// Package content reads and edits the markdown posts of the site.
package content

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"inkpress/internal/server/store"
	"inkpress/internal/types"
	"inkpress/internal/utils"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pkg/errors"
	bf "github.com/russross/blackfriday"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var extensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdx":      true,
}

// Post summarises a markdown file
type Post struct {
	Slug  string   `json:"slug"`
	Title string   `json:"title"`
	Date  string   `json:"date,omitempty"`
	Draft bool     `json:"draft,omitempty"`
	Tags  []string `json:"tags,omitempty"`
	File  string   `json:"file"`
}

type frontMatter struct {
	Title string   `yaml:"title"`
	Slug  string   `yaml:"slug"`
	Date  string   `yaml:"date"`
	Draft bool     `yaml:"draft"`
	Tags  []string `yaml:"tags"`
}

// document is a parsed markdown file. head holds the front matter block
// including its delimiters, verbatim.
type document struct {
	path string
	stem string
	meta frontMatter
	head []byte
	body []byte
}

func (d *document) slug() string {
	if d.meta.Slug != "" {
		return d.meta.Slug
	}
	return d.stem
}

// Store provides access to the posts under one directory
type Store struct {
	dir    string
	logger *zap.Logger
	policy *bluemonday.Policy
	mu     sync.RWMutex
}

// NewStore creates a content store rooted at dir
func NewStore(dir string, logger *zap.Logger) *Store {
	return &Store{
		dir:    dir,
		logger: logger.Named("content"),
		policy: bluemonday.UGCPolicy(),
	}
}

// List returns a summary of every post, ordered by file name
func (s *Store) List() ([]Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs, err := s.load()
	if err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(docs))
	for _, d := range docs {
		title := d.meta.Title
		if title == "" {
			title = utils.TitleFromSlug(d.stem)
		}
		posts = append(posts, Post{
			Slug:  d.slug(),
			Title: title,
			Date:  d.meta.Date,
			Draft: d.meta.Draft,
			Tags:  d.meta.Tags,
			File:  filepath.Base(d.path),
		})
	}
	return posts, nil
}

// ReadBody returns the body of the post matching fragment, front matter removed.
// A post whose front matter slug or file stem equals fragment wins; otherwise the
// first file, in name order, whose stem contains fragment is used.
func (s *Store) ReadBody(fragment string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.resolve(fragment, false)
	if err != nil {
		return "", err
	}
	return string(d.body), nil
}

// WriteBody replaces the body of the post whose slug is exactly slug.
// The front matter block is kept byte for byte.
func (s *Store) WriteBody(slug, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.resolve(slug, true)
	if err != nil {
		return err
	}

	out := make([]byte, 0, len(d.head)+len(body))
	out = append(out, d.head...)
	out = append(out, body...)
	if err := store.WriteFileAtomic(d.path, out); err != nil {
		return errors.Wrapf(err, "write post %s", filepath.Base(d.path))
	}

	s.logger.Info("Post body updated",
		zap.String("slug", slug),
		zap.String("file", filepath.Base(d.path)))
	return nil
}

// Preview renders the post matching fragment to sanitized HTML
func (s *Store) Preview(fragment string) (string, error) {
	body, err := s.ReadBody(fragment)
	if err != nil {
		return "", err
	}
	html := bf.MarkdownCommon([]byte(body))
	return string(s.policy.SanitizeBytes(html)), nil
}

func (s *Store) resolve(fragment string, exactOnly bool) (*document, error) {
	want := utils.FoldString(fragment)
	if want == "" {
		return nil, errors.Wrap(types.ErrNotFound, "empty slug")
	}

	docs, err := s.load()
	if err != nil {
		return nil, err
	}

	for _, d := range docs {
		if utils.FoldString(d.meta.Slug) == want || utils.FoldString(d.stem) == want {
			return d, nil
		}
	}

	if !exactOnly {
		for _, d := range docs {
			if strings.Contains(utils.FoldString(d.stem), want) {
				return d, nil
			}
		}
	}

	return nil, errors.Wrapf(types.ErrNotFound, "no post matches %q", fragment)
}

// load parses every markdown file of the directory. os.ReadDir sorts by name.
func (s *Store) load() ([]*document, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "read content directory %s", s.dir)
	}

	docs := make([]*document, 0, len(entries))
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || !extensions[ext] {
			continue
		}

		path := filepath.Join(s.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read post %s", e.Name())
		}

		d := parse(data)
		d.path = path
		d.stem = strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if len(d.head) > 0 {
			if err := yaml.Unmarshal(frontMatterYAML(d.head), &d.meta); err != nil {
				s.logger.Warn("Invalid front matter",
					zap.String("file", e.Name()),
					zap.Error(err))
			}
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// parse splits a "---" delimited front matter block from the body
func parse(data []byte) *document {
	first := lineEnd(data, 0)
	if !bytes.Equal(bytes.TrimRight(data[:first], "\r\n"), []byte("---")) {
		return &document{body: data}
	}

	for start := first; start < len(data); {
		end := lineEnd(data, start)
		if bytes.Equal(bytes.TrimRight(data[start:end], "\r\n"), []byte("---")) {
			return &document{head: data[:end], body: data[end:]}
		}
		start = end
	}
	return &document{body: data}
}

// frontMatterYAML strips the delimiter lines from head
func frontMatterYAML(head []byte) []byte {
	inner := head[lineEnd(head, 0):]
	if i := bytes.LastIndex(bytes.TrimRight(inner, "\r\n"), []byte("---")); i >= 0 {
		inner = inner[:i]
	}
	return inner
}

// lineEnd returns the index just past the newline ending the line that starts at start
func lineEnd(data []byte, start int) int {
	if i := bytes.IndexByte(data[start:], '\n'); i >= 0 {
		return start + i + 1
	}
	return len(data)
}
