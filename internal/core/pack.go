package core

// pack.go assembles generated documents into the response archive.

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Pack writes every document into a single ZIP archive, one entry per
// document in input order. Packing zero documents returns ErrNoDocuments
// rather than an empty archive.
func Pack(docs []GeneratedDocument) ([]byte, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, doc := range docs {
		w, err := zw.Create(doc.Filename)
		if err != nil {
			return nil, fmt.Errorf("create archive entry %s: %w", doc.Filename, err)
		}
		if _, err := w.Write(doc.Data); err != nil {
			return nil, fmt.Errorf("write archive entry %s: %w", doc.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
