package templates

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
	"gopkg.in/yaml.v3"
)

// DefaultTemplateID is the entry used when a requested template id is unknown.
const DefaultTemplateID = "modern"

// ErrTemplateUnavailable means neither the requested template nor the fallback entry exists.
var ErrTemplateUnavailable = errors.New("template configuration unavailable")

//go:embed catalog.yaml
var builtinCatalog []byte

// Entry 是目录中的一个模板条目。
type Entry struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category" yaml:"category"`
	Description string `json:"description" yaml:"description"`
	Config      Config `json:"config" yaml:"config"`
}

type catalogFile struct {
	Templates []Entry `yaml:"templates"`
}

// Catalog is an immutable, ordered set of template entries. Safe for concurrent reads.
type Catalog struct {
	entries []Entry
	byID    map[string]int
}

// NewCatalog builds a catalog from entries; later entries replace earlier ones with the same id.
func NewCatalog(entries []Entry) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int, len(entries))}
	for _, e := range entries {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, errors.New("template entry without id")
		}
		e.ID = id
		if idx, ok := c.byID[id]; ok {
			c.entries[idx] = e
			continue
		}
		c.byID[id] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c, nil
}

// ParseCatalog decodes a YAML document of the form `templates: [...]`.
func ParseCatalog(data []byte) ([]Entry, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return f.Templates, nil
}

// LoadCatalog 读取内置目录；extraPath 非空时追加（或覆盖）其中的条目。
func LoadCatalog(extraPath string) (*Catalog, error) {
	entries, err := ParseCatalog(builtinCatalog)
	if err != nil {
		return nil, fmt.Errorf("builtin catalog: %w", err)
	}

	if p := strings.TrimSpace(extraPath); p != "" {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %q: %w", p, err)
		}
		extra, err := ParseCatalog(data)
		if err != nil {
			return nil, fmt.Errorf("catalog %q: %w", p, err)
		}
		entries = append(entries, extra...)
	}

	return NewCatalog(entries)
}

// MustLoadBuiltin returns the embedded catalog and panics if it is malformed.
func MustLoadBuiltin() *Catalog {
	c, err := LoadCatalog("")
	if err != nil {
		panic(err)
	}
	return c
}

// Entries returns a copy of all entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Lookup returns the entry for id without falling back.
func (c *Catalog) Lookup(id string) (Entry, bool) {
	idx, ok := c.byID[strings.TrimSpace(id)]
	if !ok {
		return Entry{}, false
	}
	return c.entries[idx], true
}

// Search 对名称、分类、描述做模糊匹配，按匹配分数排序；空查询返回全部条目。
func (c *Catalog) Search(query string) []Entry {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.Entries()
	}

	searchStrings := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		searchStrings = append(searchStrings, fmt.Sprintf("%s %s %s %s", e.Name, e.ID, e.Category, e.Description))
	}

	matches := fuzzy.Find(query, searchStrings)
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })

	results := make([]Entry, 0, len(matches))
	for _, m := range matches {
		results = append(results, c.entries[m.Index])
	}
	return results
}
