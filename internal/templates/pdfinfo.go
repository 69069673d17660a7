package templates

import (
	"fmt"
	"os"

	rpdf "rsc.io/pdf"
)

// PageCount returns the number of pages of the PDF at path.
func PageCount(path string) (n int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	// rsc.io/pdf panics on some malformed input.
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("read %s: %v", path, r)
		}
	}()
	doc, err := rpdf.NewReader(f, st.Size())
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	return doc.NumPage(), nil
}
