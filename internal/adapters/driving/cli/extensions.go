package cli

import (
	"strings"

	"github.com/corvid-labs/grounder/internal/normalisers"
)

var supportedExts = func() map[string]bool {
	exts := make(map[string]bool)
	for _, ext := range normalisers.Defaults().SupportedExtensions() {
		exts[ext] = true
	}
	return exts
}()

func supportedExtension(ext string) bool {
	return supportedExts[strings.ToLower(ext)]
}
