package output

import (
	"path/filepath"
	"strings"

	"github.com/temirov/fuse/internal/types"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "
	directorySuffix     = "/"
)

type treeNode struct {
	name        string
	isDirectory bool
	isRoot      bool
	children    []*treeNode
}

// RenderTree renders entries, in the order given, as a box-drawing tree with
// one top-level node per root. Directories without selected files below them
// are elided except in TocModeFilesAndDirs; root directories always appear.
func RenderTree(entries []types.SelectedEntry, mode types.TocMode) string {
	if mode == types.TocModeNone {
		return ""
	}
	roots := buildTreeNodes(entries)
	visible := make([]*treeNode, 0, len(roots))
	for _, root := range roots {
		if pruned := pruneTreeNode(root, mode); pruned != nil {
			visible = append(visible, pruned)
		}
	}
	var lines []string
	for index, node := range visible {
		lines = appendTreeLines(lines, node, "", index == len(visible)-1)
	}
	return strings.Join(lines, "\n")
}

// buildTreeNodes nests entries by depth. Entries arrive depth first, so the
// parent of an entry at depth d is the most recent directory at depth d-1.
func buildTreeNodes(entries []types.SelectedEntry) []*treeNode {
	var roots []*treeNode
	var openDirectories []*treeNode
	for _, entry := range entries {
		node := &treeNode{
			name:        treeNodeName(entry),
			isDirectory: entry.IsDirectory(),
			isRoot:      entry.Depth == 0,
		}
		if entry.Depth == 0 || entry.Depth > len(openDirectories) {
			openDirectories = openDirectories[:0]
			roots = append(roots, node)
		} else {
			openDirectories = openDirectories[:entry.Depth]
			parent := openDirectories[entry.Depth-1]
			parent.children = append(parent.children, node)
		}
		if node.isDirectory {
			openDirectories = append(openDirectories, node)
		}
	}
	return roots
}

// treeNodeName uses the base name for every node, roots included. Roots
// written as "." or ".." are named after the directory they resolve to.
func treeNodeName(entry types.SelectedEntry) string {
	name := filepath.Base(entry.Path)
	if entry.Depth == 0 && (name == "." || name == "..") && entry.AbsolutePath != "" {
		name = filepath.Base(entry.AbsolutePath)
	}
	name = filepath.ToSlash(name)
	if entry.IsDirectory() && !strings.HasSuffix(name, directorySuffix) {
		name += directorySuffix
	}
	return name
}

// pruneTreeNode returns the visible copy of node for mode, or nil.
func pruneTreeNode(node *treeNode, mode types.TocMode) *treeNode {
	if !node.isDirectory {
		if mode == types.TocModeDirsOnly {
			return nil
		}
		return node
	}
	pruned := &treeNode{name: node.name, isDirectory: true, isRoot: node.isRoot}
	for _, child := range node.children {
		if visibleChild := pruneTreeNode(child, mode); visibleChild != nil {
			pruned.children = append(pruned.children, visibleChild)
		}
	}
	if mode == types.TocModeFilesAndDirs || node.isRoot || containsFile(node) {
		return pruned
	}
	return nil
}

func containsFile(node *treeNode) bool {
	for _, child := range node.children {
		if !child.isDirectory || containsFile(child) {
			return true
		}
	}
	return false
}

func treeNodeLinePrefix(prefix string, isLast bool) (string, string) {
	if isLast {
		return prefix + treeLastConnector, prefix + treeLastPadding
	}
	return prefix + treeBranchConnector, prefix + treeBranchPadding
}

func appendTreeLines(lines []string, node *treeNode, prefix string, isLast bool) []string {
	linePrefix, childPrefix := treeNodeLinePrefix(prefix, isLast)
	lines = append(lines, linePrefix+node.name)
	for index, child := range node.children {
		lines = appendTreeLines(lines, child, childPrefix, index == len(node.children)-1)
	}
	return lines
}
