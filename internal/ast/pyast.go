package ast

import (
	"context"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	pythonlang "github.com/alexaandru/go-sitter-forest/python"
)

// ParsePython lowers Python source into the canonical Node shape. This is
// the secondary-language front-end (spec §4.4), grounded on the teacher
// pack's tree-sitter-bare + go-sitter-forest usage.
func ParsePython(filename string, src []byte) (*Node, error) {
	lang := sitter.NewLanguage(pythonlang.GetLanguage())

	parser := sitter.NewParser()
	if err := parser.SetLanguage(lang); err != nil {
		return nil, err
	}

	tree, err := parser.ParseString(context.Background(), nil, src)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()

	out := &Node{Kind: KindFile, Name: filename}
	lowerPyBlock(root, src, out, nil)

	return out, nil
}

// lowerPyBlock lowers the named children of a tree-sitter node into the
// canonical shape, appending onto parent. currentClass is non-nil while
// inside a class body, used to attach Field/Method nodes to the right
// Class and to recognize self.<attr> assignments.
func lowerPyBlock(tsNode sitter.Node, src []byte, parent *Node, currentClass *Node) {
	count := tsNode.NamedChildCount()

	for i := uint32(0); i < count; i++ {
		child := tsNode.NamedChild(i)
		lowerPyNode(child, src, parent, currentClass)
	}
}

func pyText(n sitter.Node, src []byte) string {
	start, end := n.StartByte(), n.EndByte()
	if end > uint32(len(src)) || start > end {
		return ""
	}

	return string(src[start:end])
}

func pyLine(n sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

//nolint:gocyclo // one dispatch switch over tree-sitter's python node kinds.
func lowerPyNode(n sitter.Node, src []byte, parent *Node, currentClass *Node) {
	switch n.Type() {
	case "class_definition":
		nameNode := n.ChildByFieldName("name")
		classNode := &Node{Kind: KindClass, Name: pyText(nameNode, src), Line: pyLine(n)}

		body := n.ChildByFieldName("body")
		lowerPyBlock(body, src, classNode, classNode)
		parent.Children = append(parent.Children, classNode)

	case "function_definition":
		nameNode := n.ChildByFieldName("name")
		name := pyText(nameNode, src)

		kind := KindFunction
		if currentClass != nil {
			kind = KindMethod
		}

		fnNode := &Node{Kind: kind, Name: name, Line: pyLine(n)}
		fnNode.IsConstructor = name == "__init__"
		fnNode.IsAccessor = isPyAccessor(n, src, name)

		body := n.ChildByFieldName("body")
		lowerPyBlock(body, src, fnNode, currentClass)

		if currentClass != nil {
			fnNode.AccessedFields = collectPySelfFields(body, src)

			if fnNode.IsConstructor {
				for _, f := range fnNode.AccessedFields {
					currentClass.Children = append(currentClass.Children, &Node{Kind: KindField, Name: f})
				}
			}
		}

		parent.Children = append(parent.Children, fnNode)

	case "if_statement":
		ifNode := &Node{Kind: KindIf, Line: pyLine(n)}

		cond := n.ChildByFieldName("condition")
		ifNode.Children = append(ifNode.Children, lowerPyExpr(cond, src))

		consequence := n.ChildByFieldName("consequence")
		lowerPyBlock(consequence, src, ifNode, currentClass)

		alt := n.ChildByFieldName("alternative")
		if !alt.IsNull() {
			if alt.Type() == "elif_clause" {
				elifChild := &Node{Kind: KindIf, Line: pyLine(alt), IsElseIf: true}

				elifCond := alt.ChildByFieldName("condition")
				elifChild.Children = append(elifChild.Children, lowerPyExpr(elifCond, src))

				elifBody := alt.ChildByFieldName("consequence")
				lowerPyBlock(elifBody, src, elifChild, currentClass)
				ifNode.Children = append(ifNode.Children, elifChild)
			} else {
				lowerPyBlock(alt, src, ifNode, currentClass)
			}
		}

		parent.Children = append(parent.Children, ifNode)

	case "for_statement", "while_statement":
		loopNode := &Node{Kind: KindLoop, Line: pyLine(n)}
		body := n.ChildByFieldName("body")
		lowerPyBlock(body, src, loopNode, currentClass)
		parent.Children = append(parent.Children, loopNode)

	case "try_statement":
		tryNode := &Node{Kind: KindTry, Line: pyLine(n)}
		lowerPyBlock(n, src, tryNode, currentClass)
		parent.Children = append(parent.Children, tryNode)

	case "except_clause":
		catchNode := &Node{Kind: KindCatch, Line: pyLine(n)}
		lowerPyBlock(n, src, catchNode, currentClass)
		parent.Children = append(parent.Children, catchNode)

	case "match_statement", "switch_statement":
		switchNode := &Node{Kind: KindSwitch, Line: pyLine(n)}
		lowerPyBlock(n, src, switchNode, currentClass)
		parent.Children = append(parent.Children, switchNode)

	case "case_clause":
		caseNode := &Node{Kind: KindCase, Line: pyLine(n)}
		lowerPyBlock(n, src, caseNode, currentClass)
		parent.Children = append(parent.Children, caseNode)

	case "assignment":
		parent.Children = append(parent.Children, lowerPyAssignment(n, src))

	case "expression_statement":
		lowerPyBlock(n, src, parent, currentClass)

	default:
		// Statement kinds irrelevant to complexity/anemic analysis are
		// dropped; their descendants are still walked for nested defs.
		lowerPyBlock(n, src, parent, currentClass)
	}
}

func lowerPyAssignment(n sitter.Node, src []byte) *Node {
	assign := &Node{Kind: KindAssignment, Line: pyLine(n)}

	left := n.ChildByFieldName("left")
	if left.Type() == "attribute" {
		object := left.ChildByFieldName("object")
		attr := left.ChildByFieldName("attribute")

		if pyText(object, src) == "self" {
			name := pyText(attr, src)
			assign.SelfAssignTarget = "self." + name
			assign.AccessedFields = append(assign.AccessedFields, name)
		}
	}

	right := n.ChildByFieldName("right")
	if !right.IsNull() {
		assign.Children = append(assign.Children, lowerPyExpr(right, src))
	}

	return assign
}

func lowerPyExpr(n sitter.Node, src []byte) *Node {
	if n.IsNull() {
		return &Node{Kind: KindIdentifier}
	}

	switch n.Type() {
	case "boolean_operator":
		opNode := n.ChildByFieldName("operator")
		op := pyText(opNode, src)

		operator := ""

		switch op {
		case "and":
			operator = LogicalAnd
		case "or":
			operator = LogicalOr
		}

		out := &Node{Kind: KindBinaryOp, Operator: operator, Line: pyLine(n)}
		out.Children = append(out.Children,
			lowerPyExpr(n.ChildByFieldName("left"), src),
			lowerPyExpr(n.ChildByFieldName("right"), src))

		return out

	case "conditional_expression":
		return &Node{Kind: KindTernary, Line: pyLine(n)}

	case "call":
		fn := n.ChildByFieldName("function")
		name := pyText(fn, src)
		name = strings.TrimPrefix(name, "self.")

		return &Node{Kind: KindCall, Name: name, Line: pyLine(n)}

	case "attribute":
		attr := n.ChildByFieldName("attribute")

		return &Node{Kind: KindFieldAccess, Name: pyText(attr, src), Line: pyLine(n)}

	default:
		return &Node{Kind: KindIdentifier, Line: pyLine(n)}
	}
}

// isPyAccessor recognizes @property getters and trivial setters: a
// single-statement method body that returns or assigns exactly one
// self.<attr>, and dunder methods are always excluded from "behavior".
func isPyAccessor(n sitter.Node, src []byte, name string) bool {
	if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
		return true
	}

	body := n.ChildByFieldName("body")
	if body.IsNull() || body.NamedChildCount() != 1 {
		return false
	}

	stmt := body.NamedChild(0)

	switch stmt.Type() {
	case "return_statement":
		inner := stmt.NamedChild(0)

		return !inner.IsNull() && inner.Type() == "attribute"
	case "expression_statement":
		inner := stmt.NamedChild(0)

		return !inner.IsNull() && inner.Type() == "assignment"
	default:
		return false
	}
}

func collectPySelfFields(body sitter.Node, src []byte) []string {
	seen := make(map[string]struct{})

	var walk func(n sitter.Node)

	walk = func(n sitter.Node) {
		if n.IsNull() {
			return
		}

		if n.Type() == "attribute" {
			object := n.ChildByFieldName("object")
			if pyText(object, src) == "self" {
				attr := n.ChildByFieldName("attribute")
				seen[pyText(attr, src)] = struct{}{}
			}
		}

		count := n.NamedChildCount()
		for i := uint32(0); i < count; i++ {
			walk(n.NamedChild(i))
		}
	}

	walk(body)

	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}

	return out
}
