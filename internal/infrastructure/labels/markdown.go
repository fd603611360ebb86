package labels

import (
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// fencedBlock returns the body of the first fenced code block whose info
// string starts with language (case-insensitive).
func fencedBlock(doc []byte, language string) ([]byte, bool) {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	root := markdown.Parse(doc, p)

	var (
		found []byte
		ok    bool
	)
	ast.WalkFunc(root, func(node ast.Node, entering bool) ast.WalkStatus {
		block, isCode := node.(*ast.CodeBlock)
		if !entering || !isCode || !block.IsFenced {
			return ast.GoToNext
		}
		info := strings.Fields(string(block.Info))
		if len(info) == 0 || !strings.EqualFold(info[0], language) {
			return ast.GoToNext
		}
		found, ok = block.Literal, true
		return ast.Terminate
	})
	return found, ok
}
