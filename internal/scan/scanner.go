package scan

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/Zuo-Peng/ai-session-dataset/internal/parse"
	"github.com/gobwas/glob"
)

// DefaultPattern matches Claude Code session files.
const DefaultPattern = "*.jsonl"

type FileInfo struct {
	Path    string
	Project string // project directory name
	Mtime   int64
	Size    int64
}

// Matcher selects session files by base name.
type Matcher struct {
	pattern string
	g       glob.Glob
}

func NewMatcher(pattern string) (*Matcher, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid session pattern '%s': %w", pattern, err)
	}
	return &Matcher{pattern: pattern, g: g}, nil
}

func (m *Matcher) Match(name string) bool {
	return m.g.Match(name)
}

func (m *Matcher) String() string {
	return m.pattern
}

// Projects lists the immediate subdirectories of root in name order. Entries
// that are not directories are skipped.
func Projects(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if !isDir(root, e) {
			continue
		}
		dirs = append(dirs, filepath.Join(root, e.Name()))
	}
	return dirs, nil
}

// SessionFiles lists the files directly inside dir whose names match m.
func SessionFiles(dir string, m *Matcher) ([]FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !m.Match(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue // removed since ReadDir
		}
		if !info.Mode().IsRegular() && info.Mode()&os.ModeSymlink == 0 {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(dir, e.Name()),
			Project: filepath.Base(dir),
			Mtime:   info.ModTime().Unix(),
			Size:    info.Size(),
		})
	}
	return files, nil
}

// ScanRoot lists every session file under root, project by project.
func ScanRoot(root string, m *Matcher) ([]FileInfo, error) {
	projects, err := Projects(root)
	if err != nil {
		return nil, err
	}
	var files []FileInfo
	for _, dir := range projects {
		pf, err := SessionFiles(dir, m)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		files = append(files, pf...)
	}
	return files, nil
}

// isDir follows symlinks so linked project directories are walked too.
func isDir(root string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(root, e.Name()))
	return err == nil && info.IsDir()
}

// Collector concatenates the Records of every session file under a root.
type Collector struct {
	reader  *parse.Reader
	matcher *Matcher
	files   int
}

func NewCollector(reader *parse.Reader, m *Matcher) *Collector {
	return &Collector{reader: reader, matcher: m}
}

// Files reports how many session files have been opened so far.
func (c *Collector) Files() int {
	return c.files
}

// Collect yields Records project by project, file by file. Iteration stops at
// the first error.
func (c *Collector) Collect(root string) iter.Seq2[parse.Record, error] {
	return func(yield func(parse.Record, error) bool) {
		projects, err := Projects(root)
		if err != nil {
			yield(parse.Record{}, fmt.Errorf("list projects: %w", err))
			return
		}
		for _, dir := range projects {
			files, err := SessionFiles(dir, c.matcher)
			if err != nil {
				yield(parse.Record{}, fmt.Errorf("scan %s: %w", dir, err))
				return
			}
			for _, fi := range files {
				c.files++
				for rec, err := range c.reader.Read(fi.Path) {
					if !yield(rec, err) || err != nil {
						return
					}
				}
			}
		}
	}
}
