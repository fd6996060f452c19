package fsgate

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// IsValidPath reports whether a client-supplied path may be used against
// the data root. A path is rejected when it is empty, contains a NUL byte,
// or has a ".." segment after splitting on both "/" and "\".
//
// The check is purely textual. Percent-encoded sequences are not decoded.
func IsValidPath(p string) bool {
	if p == "" || strings.ContainsRune(p, 0) {
		return false
	}

	for _, seg := range strings.FieldsFunc(p, isSeparator) {
		if seg == ".." {
			return false
		}
	}

	return true
}

// ValidatePath checks p and resolves it against dataDir.
func ValidatePath(dataDir, p string) (PathResult, error) {
	if !IsValidPath(p) {
		return PathResult{}, fmt.Errorf("validate path %q: %w", p, ErrInvalidPath)
	}

	return PathResult{
		RelativePath: p,
		AbsolutePath: filepath.Join(dataDir, filepath.FromSlash(p)),
		Name:         rootName(p),
	}, nil
}

// rootName turns a client path into a name usable with os.Root, which
// refuses absolute names.
func rootName(p string) string {
	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	if name == "" {
		return "."
	}
	return name
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}
