// Package bestiary models the Pathfinder monster database: a single JSON
// document mapping Archives of Nethys URLs to monster records. Records are
// decoded through an order-preserving YAML parser (JSON is a YAML subset)
// so that keyed tables render in the order the database stores them.
package bestiary

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/tailscale/hujson"

	"github.com/beastforge/beastforge/pkg/errors"
)

// Entry is one corpus entry: a source URL and the raw record fields.
// Parsing into a typed MonsterRecord is deferred to conversion time so a
// malformed record fails on its own, not at load time.
type Entry struct {
	Key string
	Raw Fields
}

// IsNPC reports whether the entry came from an NPC display page; those
// records get an "NPC " prefix on both the document name and filename.
func (e Entry) IsNPC() bool {
	return strings.Contains(e.Key, "NPCDisplay")
}

// Record parses the entry into a typed MonsterRecord.
func (e Entry) Record() (*MonsterRecord, error) {
	return ParseRecord(e.Key, e.Raw)
}

// Corpus is the loaded monster database in source order.
type Corpus struct {
	entries []Entry
	index   map[string]int
}

// Load reads and decodes the corpus from path. The file is standardized
// with hujson first, so comments or trailing commas in a hand-edited
// corpus do not abort the run.
func Load(path string) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(data, path)
}

// Parse decodes corpus bytes. The name is used in error messages only.
func Parse(data []byte, name string) (*Corpus, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, errors.WrapParse("json", name, err)
	}

	var doc yaml.MapSlice
	if err := yaml.UnmarshalWithOptions(standardized, &doc, yaml.UseOrderedMap()); err != nil {
		return nil, errors.WrapParse("json", name, err)
	}

	corpus := &Corpus{
		entries: make([]Entry, 0, len(doc)),
		index:   make(map[string]int, len(doc)),
	}
	for _, item := range doc {
		key, ok := item.Key.(string)
		if !ok {
			key = FormatScalar(item.Key)
		}
		raw, ok := fieldsFrom(item.Value)
		if !ok {
			return nil, errors.NewUnexpectedShapeError(key, "record", item.Value)
		}
		corpus.index[key] = len(corpus.entries)
		corpus.entries = append(corpus.entries, Entry{Key: key, Raw: raw})
	}
	return corpus, nil
}

// Len returns the number of records in the corpus.
func (c *Corpus) Len() int {
	return len(c.entries)
}

// Entries returns all entries in source order.
func (c *Corpus) Entries() []Entry {
	return c.entries
}

// Get returns the entry for a corpus key.
func (c *Corpus) Get(key string) (Entry, error) {
	i, ok := c.index[key]
	if !ok {
		return Entry{}, errors.NewNotFoundError("record", key)
	}
	return c.entries[i], nil
}

// At returns the entry at a zero-based position in source order.
func (c *Corpus) At(i int) (Entry, error) {
	if i < 0 || i >= len(c.entries) {
		return Entry{}, errors.NewNotFoundError("record at index", fmt.Sprint(i))
	}
	return c.entries[i], nil
}
