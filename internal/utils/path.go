package utils

import (
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// ResolveDataDir finds the directory holding dictionary chunks. It tries, in
// order: requested as given, relative to the executable, relative to the
// working dir, then each of extra. The first candidate containing dict_*.bin
// files wins; otherwise requested is returned unchanged.
func ResolveDataDir(requested string, extra ...string) string {
	for _, path := range dataDirCandidates(requested, extra) {
		if IsDataDir(path) {
			log.Debugf("Found data directory: %s", path)
			return path
		}
		log.Debugf("Data directory candidate not valid: %s", path)
	}
	return requested
}

func dataDirCandidates(requested string, extra []string) []string {
	var candidates []string
	if requested != "" {
		candidates = append(candidates, requested)
		if !filepath.IsAbs(requested) {
			if execDir, err := GetExecutableDir(); err == nil {
				candidates = append(candidates, filepath.Join(execDir, requested))
			}
			if cwd, err := os.Getwd(); err == nil {
				candidates = append(candidates, filepath.Join(cwd, requested))
			}
		}
	}
	return append(candidates, extra...)
}

// IsDataDir reports whether path is a directory with at least one chunk file.
func IsDataDir(path string) bool {
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return false
	}
	matches, err := filepath.Glob(filepath.Join(path, "dict_*.bin"))
	return err == nil && len(matches) > 0
}
