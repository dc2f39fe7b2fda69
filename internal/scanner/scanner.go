// Package scanner lists the source files under a root, honoring exclusion
// rules and .gitignore.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/strata/pkg/config"
	"github.com/panbanda/strata/pkg/parser"
)

// Scanner finds source files in a directory.
type Scanner struct {
	config    *config.Config
	matchers  []gitignore.Matcher
	languages map[parser.Language]bool
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Scanner{config: cfg}
	if len(cfg.Adapters.Languages) > 0 {
		s.languages = make(map[parser.Language]bool)
		for _, l := range cfg.Adapters.Languages {
			lang := parser.Language(strings.ToLower(l))
			s.languages[lang] = true
			// Restricting to typescript keeps its sibling grammars.
			if lang == parser.LangTypeScript {
				s.languages[parser.LangTSX] = true
				s.languages[parser.LangJavaScript] = true
			}
		}
	}
	return s
}

// findGitRoot finds the root of the git repository by looking for .git directory.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns loads exclusion patterns from config and .gitignore files.
func (s *Scanner) loadExcludePatterns(root string) {
	s.matchers = nil
	var patterns []gitignore.Pattern

	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}
	for _, dir := range s.config.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(dir+"/", nil))
	}

	if s.config.Exclude.Gitignore {
		// Patterns are matched relative to root, so only honor .gitignore
		// files when root is the repository root.
		if gitRoot := findGitRoot(root); gitRoot != "" && sameDir(gitRoot, root) {
			if gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil); err == nil {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
}

func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && filepath.Clean(absA) == filepath.Clean(absB)
}

// isExcluded checks if a root-relative path matches any exclusion pattern.
func (s *Scanner) isExcluded(relPath string, isDir bool) bool {
	if len(s.matchers) == 0 {
		return false
	}

	pathParts := strings.Split(filepath.ToSlash(relPath), "/")
	for _, m := range s.matchers {
		if m.Match(pathParts, isDir) {
			return true
		}
	}
	return false
}

// accepts reports whether a file has a supported and enabled language.
func (s *Scanner) accepts(path string) bool {
	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		return false
	}
	return s.languages == nil || s.languages[lang]
}

// ForRoot loads the exclusion rules for root so single paths can be
// checked with Included and ExcludedDir without walking the tree.
func (s *Scanner) ForRoot(root string) *Scanner {
	s.loadExcludePatterns(root)
	return s
}

// Included reports whether ScanDir would return the root-relative file path.
func (s *Scanner) Included(relPath string) bool {
	return !s.isExcluded(relPath, false) && !s.config.ShouldExclude(relPath) && s.accepts(relPath)
}

// ExcludedDir reports whether ScanDir skips the root-relative directory.
func (s *Scanner) ExcludedDir(relPath string) bool {
	return s.isExcluded(relPath, true)
}

// ScanDir recursively scans a directory for source files and returns their
// paths joined to root, sorted. Symlinks escaping root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(root)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		if relPath == "." {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}

		if d.IsDir() {
			if s.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if s.Included(relPath) {
			files = append(files, path)
		}

		return nil
	})

	sort.Strings(files)
	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Separator suffix prevents "/root2" matching "/root".
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// GroupByLanguage groups files by their detected language.
func GroupByLanguage(files []string) map[parser.Language][]string {
	groups := make(map[parser.Language][]string)
	for _, f := range files {
		if lang := parser.DetectLanguage(f); lang != parser.LangUnknown {
			groups[lang] = append(groups[lang], f)
		}
	}
	return groups
}

// FilterBySize splits files into those within maxSize and those skipped
// (too large or unreadable). If maxSize is 0, every file is kept.
func FilterBySize(files []string, maxSize int64) (kept, skipped []string) {
	if maxSize <= 0 {
		return files, nil
	}

	kept = make([]string, 0, len(files))
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil || info.Size() > maxSize {
			skipped = append(skipped, f)
			continue
		}
		kept = append(kept, f)
	}

	return kept, skipped
}

// RelPath returns path relative to root using forward slashes.
func RelPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
