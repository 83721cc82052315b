// Package source resolves the file-like inputs chatview can ingest: a
// path on disk, stdin, or the bundled sample export.
package source

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	Stdin      = "-"
	SampleName = "sample"
)

//go:embed sample.txt
var sample []byte

type Info struct {
	Name  string // display name
	Path  string // empty for stdin and the sample
	Mtime int64
	Size  int64
}

// Sample returns a fresh reader over the bundled export.
func Sample() io.Reader {
	return bytes.NewReader(sample)
}

func SampleInfo() Info {
	return Info{Name: SampleName, Size: int64(len(sample))}
}

// Open resolves path to a readable source. "-" reads stdin, which is
// not closed by the returned ReadCloser. A directory opens the newest
// export found under it.
func Open(path string) (io.ReadCloser, Info, error) {
	if path == Stdin {
		return io.NopCloser(os.Stdin), Info{Name: "stdin"}, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, Info{}, fmt.Errorf("resolve %s: %w", path, err)
	}

	f, err := os.Open(abs)
	if err != nil {
		return nil, Info{}, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Info{}, err
	}
	if info.IsDir() {
		f.Close()
		return openNewest(abs)
	}

	return f, Info{
		Name:  filepath.Base(abs),
		Path:  abs,
		Mtime: info.ModTime().Unix(),
		Size:  info.Size(),
	}, nil
}

// Resolve is Open that also accepts "" and "sample" for the bundled
// export.
func Resolve(path string) (io.ReadCloser, Info, error) {
	if path == "" || path == SampleName {
		return io.NopCloser(Sample()), SampleInfo(), nil
	}
	return Open(path)
}

func openNewest(dir string) (io.ReadCloser, Info, error) {
	exports, err := FindExports(dir)
	if err != nil {
		return nil, Info{}, fmt.Errorf("scan %s: %w", dir, err)
	}
	if len(exports) == 0 {
		return nil, Info{}, fmt.Errorf("no chat export in %s", dir)
	}
	f, err := os.Open(exports[0].Path)
	if err != nil {
		return nil, Info{}, err
	}
	return f, exports[0], nil
}
