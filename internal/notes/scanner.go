package notes

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// File is one scanned note file with its parse result.
type File struct {
	Dir     string // scan root containing the file
	RelPath string // slash-separated path relative to the scan root
	AbsPath string
	Doc     *Document
}

// ScanError records a file that could not be read or parsed. The scan keeps
// going; one malformed note must not hide the rest of the notebook.
type ScanError struct {
	Path string
	Err  error
}

// ScanDirs walks each directory looking for markdown note files. Hidden
// directories are skipped, as is any file for which skip returns true
// (used to keep the index document out of the note set). Directories that
// do not exist are silently ignored.
func ScanDirs(dirs []string, skip func(relPath string) bool) ([]*File, []ScanError, error) {
	var files []*File
	var scanErrs []ScanError

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}

		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if strings.HasPrefix(d.Name(), ".") && path != dir {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
				return nil
			}

			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if skip != nil && skip(rel) {
				return nil
			}

			data, err := os.ReadFile(path)
			if err != nil {
				scanErrs = append(scanErrs, ScanError{Path: path, Err: err})
				return nil
			}

			doc, err := Parse(data)
			if err != nil {
				scanErrs = append(scanErrs, ScanError{Path: path, Err: err})
				return nil
			}

			if doc.Title == "" {
				doc.Title = titleFromFilename(d.Name())
			}

			files = append(files, &File{
				Dir:     dir,
				RelPath: rel,
				AbsPath: path,
				Doc:     doc,
			})
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("walk note dir %s: %w", dir, err)
		}
	}

	return files, scanErrs, nil
}

// titleFromFilename turns "effect-error-handling.md" into
// "effect error handling".
func titleFromFilename(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.ReplaceAll(base, "-", " ")
	base = strings.ReplaceAll(base, "_", " ")
	return strings.TrimSpace(base)
}
