package changes

import (
	"slices"
	"strings"
)

type treeNode struct {
	children map[string]*treeNode
	file     bool
}

func newTreeNode() *treeNode {
	return &treeNode{children: map[string]*treeNode{}}
}

func (n *treeNode) insert(path string) {
	cur := n
	parts := strings.Split(path, "/")
	for i, part := range parts {
		child, ok := cur.children[part]
		if !ok {
			child = newTreeNode()
			cur.children[part] = child
		}
		if i == len(parts)-1 {
			child.file = true
		}
		cur = child
	}
}

// BuildTree arranges entries into a folder tree and flattens it depth first.
// Siblings are ordered folders first, then by name. Folder rows carry the
// OR of their descendants' status and the sum of their deltas; deltas
// missing from the map count as zero.
func BuildTree(entries []PathEntry, deltas map[string]PathDelta) []TreeRow {
	fileStatus := make(map[string]PathStatus, len(entries))
	for _, entry := range entries {
		fileStatus[entry.Path] = fileStatus[entry.Path].Merge(entry.Status())
	}

	folderStatus := map[string]PathStatus{}
	folderDelta := map[string]PathDelta{}
	root := newTreeNode()
	for path, status := range fileStatus {
		delta := deltas[path]
		for _, folder := range ancestors(path) {
			folderStatus[folder] = folderStatus[folder].Merge(status)
			folderDelta[folder] = folderDelta[folder].Add(delta)
		}
		root.insert(path)
	}

	rows := make([]TreeRow, 0, len(fileStatus)+len(folderStatus))
	var walk func(n *treeNode, parent string, depth int)
	walk = func(n *treeNode, parent string, depth int) {
		for _, name := range sortedChildren(n) {
			child := n.children[name]
			path := name
			if parent != "" {
				path = parent + "/" + name
			}
			indent := strings.Repeat("  ", depth)
			if child.file {
				rows = append(rows, TreeRow{
					Path:       path,
					Label:      indent + name,
					Kind:       RowFile,
					PathStatus: fileStatus[path],
					PathDelta:  deltas[path],
				})
			} else {
				rows = append(rows, TreeRow{
					Path:       path,
					Label:      indent + name + "/",
					Kind:       RowFolder,
					PathStatus: folderStatus[path],
					PathDelta:  folderDelta[path],
				})
			}
			walk(child, path, depth+1)
		}
	}
	walk(root, "", 0)
	return rows
}

// ancestors lists the folder prefixes of path, outermost first:
// "a/b/c.txt" yields "a" and "a/b".
func ancestors(path string) []string {
	var out []string
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			out = append(out, path[:i])
		}
	}
	return out
}

func sortedChildren(n *treeNode) []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		fa, fb := n.children[a].file, n.children[b].file
		if fa != fb {
			if fb {
				return -1
			}
			return 1
		}
		return strings.Compare(a, b)
	})
	return names
}
