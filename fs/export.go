package fs

import (
	"context"
	"net/url"
	"path"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/passage"
	"gopkg.in/yaml.v3"
)

// URLToPath converts a page URL to a relative file path. Dot segments are
// resolved against the root, so the result never climbs out of the export
// directory.
// Example: https://example.com/docs/api/users → docs/api/users.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", passage.Errorf(passage.EINVALID, "invalid page url: %v", err)
	}

	dir := strings.HasSuffix(u.Path, "/")
	p := strings.TrimPrefix(path.Clean("/"+u.Path), "/")

	// Handle root or trailing slash → index.md
	if p == "" {
		return "index.md", nil
	}
	if dir {
		return p + "/index.md", nil
	}
	return p + ".md", nil
}

// frontMatter is the YAML header of an exported page.
type frontMatter struct {
	Source   string `yaml:"source"`
	Title    string `yaml:"title"`
	Format   string `yaml:"format"`
	Exported string `yaml:"exported"`
}

// FormatPage formats a page body with YAML frontmatter.
func FormatPage(page *passage.Page, exported time.Time) (string, error) {
	header, err := yaml.Marshal(&frontMatter{
		Source:   page.URL,
		Title:    page.Title,
		Format:   string(page.Format),
		Exported: exported.Format("2006-01-02"),
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	b.WriteString(page.Body)
	return b.String(), nil
}

// Exporter writes pages as markdown files under baseDir/name. Files are
// written to baseDir/name.tmp first and moved into place only when every
// page was written, so a failed export never leaves a partial directory.
type Exporter struct {
	baseDir string
	name    string
	now     func() time.Time
}

// NewExporter creates a new Exporter.
func NewExporter(baseDir, name string) *Exporter {
	return &Exporter{baseDir: baseDir, name: name, now: time.Now}
}

func (e *Exporter) tempDir() string {
	return filepath.Join(e.baseDir, e.name+".tmp")
}

func (e *Exporter) finalDir() string {
	return filepath.Join(e.baseDir, e.name)
}

// Export writes every page and replaces the target directory. Pages whose
// urls map to the same path keep the last one written.
func (e *Exporter) Export(ctx context.Context, pages []*passage.Page) (err error) {
	if err := os.RemoveAll(e.tempDir()); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(e.tempDir())
		}
	}()

	exported := e.now()
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.save(page, exported); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(e.tempDir(), 0755); err != nil {
		return err
	}

	if err := os.RemoveAll(e.finalDir()); err != nil {
		return err
	}
	return os.Rename(e.tempDir(), e.finalDir())
}

func (e *Exporter) save(page *passage.Page, exported time.Time) error {
	relPath, err := URLToPath(page.URL)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(e.tempDir(), relPath)
	rel, err := filepath.Rel(e.tempDir(), fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return passage.Errorf(passage.EINVALID, "page url %q escapes export directory", page.URL)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}

	content, err := FormatPage(page, exported)
	if err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(content), 0644)
}
