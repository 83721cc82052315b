package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// isExportName reports whether base looks like a WhatsApp export: the
// Android "WhatsApp Chat with X.txt" or the iOS "_chat.txt".
func isExportName(base string) bool {
	if filepath.Ext(base) != ".txt" {
		return false
	}
	return base == "_chat.txt" || strings.HasPrefix(base, "WhatsApp Chat")
}

// FindExports walks root for chat exports, newest first.
func FindExports(root string) ([]Info, error) {
	var found []Info
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !isExportName(info.Name()) {
			return nil
		}
		found = append(found, Info{
			Name:  info.Name(),
			Path:  path,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Mtime != found[j].Mtime {
			return found[i].Mtime > found[j].Mtime
		}
		return found[i].Path < found[j].Path
	})
	return found, nil
}
