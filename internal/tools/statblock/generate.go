package statblock

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/beastforge/beastforge/pkg/bestiary"
	"github.com/beastforge/beastforge/pkg/errors"
	"github.com/beastforge/beastforge/pkg/logging"
)

const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// Generator converts a corpus into one document file per record.
// Per-record faults are logged with the record's corpus key and the batch
// continues; only the inability to use the output directory aborts a run.
type Generator struct {
	outputDir string
	clean     bool
	quoting   Quoting

	renderer *Renderer

	// Diagnostic accumulators, append-only across a run.
	sources     bestiary.Fields
	unknownKeys bestiary.Fields
}

// Option is a functional option for configuring the Generator
type Option func(*Generator)

// WithOutputDir sets the output directory for generated documents
func WithOutputDir(dir string) Option {
	return func(g *Generator) {
		g.outputDir = dir
	}
}

// WithClean removes existing .md files from the output directory before
// converting
func WithClean(clean bool) Option {
	return func(g *Generator) {
		g.clean = clean
	}
}

// WithQuoting selects the free-text quoting mode
func WithQuoting(q Quoting) Option {
	return func(g *Generator) {
		g.quoting = q
	}
}

// New creates a new statblock generator
func New(opts ...Option) *Generator {
	g := &Generator{
		outputDir: "./bestiary",
		quoting:   QuotingCompat,
	}

	for _, opt := range opts {
		opt(g)
	}

	g.renderer = NewRenderer(g.quoting)
	return g
}

// Summary reports the outcome of a batch conversion.
type Summary struct {
	Total   int
	Written int
	Skipped int // output conflicts
	Failed  int // per-record parse or render faults

	// Sources lists the distinct raw source names observed, in order.
	Sources []string

	// UnknownKeys lists record fields the formatter does not consume.
	UnknownKeys []string
}

// Convert renders every record in the corpus to its own file.
func (g *Generator) Convert(ctx context.Context, corpus *bestiary.Corpus) (*Summary, error) {
	if err := os.MkdirAll(g.outputDir, dirPermissions); err != nil {
		return nil, errors.WrapIO("create", g.outputDir, err)
	}
	if g.clean {
		if err := g.cleanOutputDir(); err != nil {
			return nil, err
		}
	}

	summary := &Summary{Total: corpus.Len()}
	for _, entry := range corpus.Entries() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := g.convertEntry(entry); err != nil {
			if errors.IsAlreadyExists(err) {
				summary.Skipped++
			} else {
				summary.Failed++
			}
			logging.Ctx(logging.WithRecord(ctx, entry.Key)).Error().Err(err).Msg("Skipping record")
			continue
		}
		summary.Written++
	}

	summary.Sources = g.sources.Keys()
	summary.UnknownKeys = g.unknownKeys.Keys()
	return summary, nil
}

// convertEntry renders one record to a buffer and writes it to a new
// file. The document is fully rendered before the file is created so a
// mid-record fault never leaves a partial document behind.
func (g *Generator) convertEntry(entry bestiary.Entry) error {
	rec, err := entry.Record()
	if err != nil {
		return err
	}
	g.observe(entry, rec)

	name := documentName(entry, rec)
	var buf bytes.Buffer
	if err := g.renderer.Render(&buf, rec, RenderOptions{
		Name:      name,
		SourceURL: entry.Key,
	}); err != nil {
		return err
	}

	path := filepath.Join(g.outputDir, name+".md")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePermissions)
	if err != nil {
		if os.IsExist(err) {
			return errors.NewConflictError(entry.Key, path)
		}
		return errors.WrapIO("create", path, err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// WriteOne renders a single record to w, without a source link. This is
// the smoke-test mode for eyeballing one document on stdout.
func (g *Generator) WriteOne(w io.Writer, entry bestiary.Entry) error {
	rec, err := entry.Record()
	if err != nil {
		return err
	}
	return g.renderer.Render(w, rec, RenderOptions{Name: documentName(entry, rec)})
}

// WriteTestDoc writes a minimal referencing statblock one level above the
// output directory, for checking that the plugin resolves converted
// monsters by name. Unlike record documents it may be overwritten.
func (g *Generator) WriteTestDoc(name string) (string, error) {
	parent := filepath.Dir(filepath.Clean(g.outputDir))
	path := filepath.Join(parent, name+"_test.md")

	var buf bytes.Buffer
	fmt.Fprintln(&buf, "```statblock")
	fmt.Fprintf(&buf, "monster: %s\n", name)
	fmt.Fprintln(&buf, "```")

	if err := os.WriteFile(path, buf.Bytes(), filePermissions); err != nil {
		return "", errors.WrapIO("write", path, err)
	}
	return path, nil
}

// cleanOutputDir removes markdown files directly inside the output
// directory. Subdirectories are left alone.
func (g *Generator) cleanOutputDir() error {
	err := godirwalk.Walk(g.outputDir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				if filepath.Clean(path) != filepath.Clean(g.outputDir) {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.Contains(de.Name(), ".md") {
				if err := os.Remove(path); err != nil {
					return err
				}
			}
			return nil
		},
	})
	return errors.WrapIO("clean", g.outputDir, err)
}

// observe feeds the diagnostic accumulators.
func (g *Generator) observe(entry bestiary.Entry, rec *bestiary.MonsterRecord) {
	if len(rec.Sources) > 0 {
		g.sources = g.sources.Set(rec.Sources[0].Name, true)
	}
	for _, k := range rec.UnknownKeys() {
		g.unknownKeys = g.unknownKeys.Set(k, entry.Key)
	}
}

// documentName derives the document (and file) name from the record
// title: path separators are unsafe in filenames and become " or ", and
// NPC records get a marker prefix.
func documentName(entry bestiary.Entry, rec *bestiary.MonsterRecord) string {
	name := strings.ReplaceAll(rec.Title2, "/", " or ")
	if entry.IsNPC() {
		name = "NPC " + name
	}
	return name
}
