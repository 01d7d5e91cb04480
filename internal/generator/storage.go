package generator

import (
	"archive/zip"
	"errors"
	"strings"
)

// artifactWriter abstracts the archive format from the export pipeline so
// tests can capture outputs without unpacking zip bytes.
type artifactWriter interface {
	WriteFile(path string, data []byte) error
}

type zipArtifactWriter struct {
	zw *zip.Writer
}

func newZipArtifactWriter(zw *zip.Writer) *zipArtifactWriter {
	return &zipArtifactWriter{zw: zw}
}

func (w *zipArtifactWriter) WriteFile(path string, data []byte) error {
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	if path == "" {
		return errors.New("generator: write requires path")
	}
	f, err := w.zw.Create(path)
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	return err
}

// memoryWriter collects artifacts for assertions in tests.
type memoryWriter struct {
	files map[string][]byte
	order []string
}

func newMemoryWriter() *memoryWriter {
	return &memoryWriter{files: map[string][]byte{}}
}

func (w *memoryWriter) WriteFile(path string, data []byte) error {
	if _, exists := w.files[path]; !exists {
		w.order = append(w.order, path)
	}
	w.files[path] = append([]byte(nil), data...)
	return nil
}
