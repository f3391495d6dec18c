package fs

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"gopkg.in/yaml.v3"
)

const (
	previewTTL     = 10 * time.Minute
	previewCleanup = 15 * time.Minute
	frontmatterSep = "---"
)

type previewEntry struct {
	modTime time.Time
	preview string
}

// previewCache keeps computed previews keyed by file path.
// An entry is only valid while the file's mtime is unchanged.
type previewCache struct {
	items *gocache.Cache
}

func newPreviewCache() *previewCache {
	return &previewCache{items: gocache.New(previewTTL, previewCleanup)}
}

func (c *previewCache) get(path string, modTime time.Time) (string, bool) {
	v, ok := c.items.Get(path)
	if !ok {
		return "", false
	}
	entry, ok := v.(previewEntry)
	if !ok || !entry.modTime.Equal(modTime) {
		return "", false
	}
	return entry.preview, true
}

func (c *previewCache) put(path string, modTime time.Time, preview string) {
	c.items.Set(path, previewEntry{modTime: modTime, preview: preview}, gocache.DefaultExpiration)
}

func (c *previewCache) invalidate(path string) {
	c.items.Delete(path)
}

func (c *previewCache) Len() int {
	return c.items.ItemCount()
}

// buildPreview strips a leading YAML frontmatter block and keeps the first limit runes of the body.
func buildPreview(content string, limit int) string {
	body := stripFrontmatter(content)
	if limit <= 0 {
		return body
	}
	n := 0
	for i := range body {
		if n == limit {
			return body[:i]
		}
		n++
	}
	return body
}

func stripFrontmatter(content string) string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, frontmatterSep+"\n") {
		return content
	}

	rest := normalized[len(frontmatterSep)+1:]
	end := strings.Index(rest, "\n"+frontmatterSep)
	if end < 0 {
		return content
	}
	header := rest[:end]
	after := rest[end+1+len(frontmatterSep):]
	if after != "" && after[0] != '\n' {
		// "---" followed by other text is not a closing fence.
		return content
	}

	var meta map[string]any
	if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
		return content
	}
	return strings.TrimLeft(after, "\n")
}
