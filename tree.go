package fsgate

import "strings"

// Flatten walks a listing tree depth-first and returns its nodes as a flat
// slice, children right after their parent. Directory nodes are dropped
// when excludeDirs is set. Contents are cleared on the returned entries
// and per-level order is preserved.
func Flatten(entries []DirectoryEntry, excludeDirs bool) []DirectoryEntry {
	out := make([]DirectoryEntry, 0, len(entries))
	return flattenInto(out, entries, excludeDirs)
}

func flattenInto(out, entries []DirectoryEntry, excludeDirs bool) []DirectoryEntry {
	for _, e := range entries {
		children := e.Contents
		e.Contents = nil
		if !e.IsDir() || !excludeDirs {
			out = append(out, e)
		}
		if len(children) > 0 {
			out = flattenInto(out, children, excludeDirs)
		}
	}
	return out
}

// CompareByPath orders entries by full path. Suitable for slices.SortFunc.
func CompareByPath(a, b DirectoryEntry) int {
	return strings.Compare(a.FullPath, b.FullPath)
}

// CompareByType puts directories before files, then orders by full path.
func CompareByType(a, b DirectoryEntry) int {
	switch {
	case a.IsDir() && !b.IsDir():
		return -1
	case !a.IsDir() && b.IsDir():
		return 1
	default:
		return CompareByPath(a, b)
	}
}
