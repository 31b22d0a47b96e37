// Package diff renders unified-diff previews for dry-run output.
package diff

import (
	"github.com/aymanbagabas/go-udiff"
)

// Unified returns a unified diff between old and new content. The headers
// name the file path with "original" and newDesc qualifiers so dry-run
// output identifies both sides of the proposed change.
func Unified(path string, newDesc string, old string, new string) string {
	return udiff.Unified(path+"\toriginal", path+"\t"+newDesc, old, new)
}
