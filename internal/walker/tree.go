package walker

import "github.com/tjgokken/solmap/internal/types"

// treeBuilder materializes the traversal into DirectoryNode values.
type treeBuilder struct {
	root  *types.DirectoryNode
	stack []*types.DirectoryNode
}

// BuildTree walks root and returns the retained tree.
func (walker Walker) BuildTree(root string) (*types.DirectoryNode, error) {
	builder := &treeBuilder{}
	if err := walker.Walk(root, builder); err != nil {
		return nil, err
	}
	return builder.root, nil
}

func (builder *treeBuilder) EnterDirectory(directory Directory) error {
	node := &types.DirectoryNode{Name: directory.Name, Path: directory.Path}
	if len(builder.stack) == 0 {
		builder.root = node
	} else {
		parent := builder.stack[len(builder.stack)-1]
		parent.Directories = append(parent.Directories, node)
	}
	builder.stack = append(builder.stack, node)
	return nil
}

func (builder *treeBuilder) VisitFile(file File) error {
	parent := builder.stack[len(builder.stack)-1]
	parent.Files = append(parent.Files, file.FileEntry)
	return nil
}

func (builder *treeBuilder) LeaveDirectory(Directory) error {
	builder.stack = builder.stack[:len(builder.stack)-1]
	return nil
}
