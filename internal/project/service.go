package project

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/silverl/distill/pkg/model"
)

// Service attributes a historical session to a project from the set of
// files it touched, per the analyzer's attribution order: an explicit
// project the parser already supplied, else the longest configured
// project-root path that prefixes any modified file, else the git
// worktree root discovered by walking up from the modified files, else
// the basename of their common directory, else "(unassigned)".
type Service struct {
	projects []model.ProjectDescriptor
}

// NewService builds a Service from the configured project descriptors.
// Paths are resolved to their cleaned absolute form so prefix matching
// is stable regardless of how the caller wrote them.
func NewService(projects []model.ProjectDescriptor) *Service {
	resolved := make([]model.ProjectDescriptor, 0, len(projects))
	for _, p := range projects {
		if p.Path != "" {
			if abs, err := filepath.Abs(p.Path); err == nil {
				p.Path = filepath.Clean(abs)
			}
		}
		resolved = append(resolved, p)
	}
	// Longest path first, so the most specific configured root wins a tie.
	sort.Slice(resolved, func(i, j int) bool {
		return len(resolved[i].Path) > len(resolved[j].Path)
	})
	return &Service{projects: resolved}
}

// Attribute returns the project name for a session given its explicit
// project field (if the parser supplied one) and its modified files.
func (s *Service) Attribute(explicitProject string, modifiedFiles []string) string {
	if explicitProject != "" {
		return explicitProject
	}
	if len(modifiedFiles) == 0 {
		return "(unassigned)"
	}

	if name, ok := s.knownRoot(modifiedFiles); ok {
		return name
	}
	if name, ok := s.gitWorktreeRoot(modifiedFiles); ok {
		return name
	}
	if base := commonDirBasename(modifiedFiles); base != "" {
		return base
	}
	return "(unassigned)"
}

// knownRoot returns the name of the most specific configured project
// whose path prefixes at least one modified file.
func (s *Service) knownRoot(modifiedFiles []string) (string, bool) {
	for _, p := range s.projects {
		if p.Path == "" {
			continue
		}
		for _, f := range modifiedFiles {
			abs, err := filepath.Abs(f)
			if err != nil {
				continue
			}
			if abs == p.Path || strings.HasPrefix(abs, p.Path+string(filepath.Separator)) {
				return p.Name, true
			}
		}
	}
	return "", false
}

// gitWorktreeRoot walks up from each modified file looking for a git
// root, and returns the basename of the worktree most modified files
// share.
func (s *Service) gitWorktreeRoot(modifiedFiles []string) (string, bool) {
	counts := make(map[string]int)
	for _, f := range modifiedFiles {
		dir := filepath.Dir(f)
		info, err := FromDirectory(dir)
		if err != nil || info.Worktree == "" || info.Worktree == "/" {
			continue
		}
		counts[info.Worktree]++
	}
	if len(counts) == 0 {
		return "", false
	}

	var best string
	bestCount := -1
	for worktree, count := range counts {
		if count > bestCount || (count == bestCount && worktree < best) {
			best = worktree
			bestCount = count
		}
	}
	return filepath.Base(best), true
}

// commonDirBasename returns the basename of the longest directory prefix
// shared by every modified file.
func commonDirBasename(modifiedFiles []string) string {
	var common []string
	for i, f := range modifiedFiles {
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = f
		}
		parts := strings.Split(filepath.Dir(abs), string(filepath.Separator))
		if i == 0 {
			common = parts
			continue
		}
		common = commonPrefix(common, parts)
	}
	if len(common) == 0 {
		return ""
	}
	dir := strings.Join(common, string(filepath.Separator))
	if dir == "" {
		return ""
	}
	return filepath.Base(dir)
}

func commonPrefix(a, b []string) []string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}
