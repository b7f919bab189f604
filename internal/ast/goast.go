package ast

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
)

// ParseGo lowers Go source into the canonical Node shape. This is the
// canonical-language front-end (spec §4.4): go/parser is the standard
// library's own parser for Go, and no third-party alternative in the
// pack improves on the compiler's own AST for Go source.
func ParseGo(filename string, src []byte) (*Node, error) {
	fset := token.NewFileSet()

	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	root := &Node{Kind: KindFile, Name: filename}

	classes := make(map[string]*Node)

	var classOrder []string

	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}

		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}

			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}

			classNode := &Node{Kind: KindClass, Name: ts.Name.Name, Line: fset.Position(ts.Pos()).Line}

			for _, field := range st.Fields.List {
				if len(field.Names) == 0 {
					classNode.Children = append(classNode.Children, &Node{Kind: KindField, Name: "embedded"})

					continue
				}

				for _, n := range field.Names {
					classNode.Children = append(classNode.Children, &Node{Kind: KindField, Name: n.Name})
				}
			}

			classes[ts.Name.Name] = classNode
			classOrder = append(classOrder, ts.Name.Name)
		}
	}

	var freeFunctions []*Node

	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}

		recv := receiverTypeName(fd)
		if recv == "" {
			freeFunctions = append(freeFunctions, lowerFunc(fset, fd, false))

			continue
		}

		classNode, ok := classes[recv]
		if !ok {
			classNode = &Node{Kind: KindClass, Name: recv}
			classes[recv] = classNode
			classOrder = append(classOrder, recv)
		}

		methodNode := lowerFunc(fset, fd, true)
		methodNode.IsAccessor = isGoAccessor(fd)
		methodNode.IsConstructor = strings.HasPrefix(fd.Name.Name, "New")
		methodNode.AccessedFields = collectFieldAccesses(fd, recv)

		classNode.Children = append(classNode.Children, methodNode)
	}

	for _, name := range classOrder {
		root.Children = append(root.Children, classes[name])
	}

	root.Children = append(root.Children, freeFunctions...)

	// Constructor functions (e.g. NewFoo) are free functions, not
	// methods, but their self-assignments still count toward the
	// struct's field total (spec §4.4: "fields plus self-assignments
	// within the constructor"). constructorSelfFields currently recognizes
	// none, so no synthetic Field nodes are attached to the class.
	for _, fn := range freeFunctions {
		if !strings.HasPrefix(fn.Name, "New") {
			continue
		}

		target := strings.TrimPrefix(fn.Name, "New")
		if classNode, ok := classes[target]; ok {
			classNode.Children = append(classNode.Children, constructorSelfFields(fset, fn)...)
		}
	}

	return root, nil
}

func receiverTypeName(fd *ast.FuncDecl) string {
	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		return ""
	}

	expr := fd.Recv.List[0].Type
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}

	if id, ok := expr.(*ast.Ident); ok {
		return id.Name
	}

	return ""
}

func lowerFunc(fset *token.FileSet, fd *ast.FuncDecl, isMethod bool) *Node {
	kind := KindFunction
	if isMethod {
		kind = KindMethod
	}

	fn := &Node{Kind: kind, Name: fd.Name.Name, Line: fset.Position(fd.Pos()).Line}

	if fd.Body != nil {
		for _, stmt := range fd.Body.List {
			fn.Children = append(fn.Children, lowerStmt(fset, stmt))
		}
	}

	return fn
}

func lowerStmt(fset *token.FileSet, stmt ast.Stmt) *Node {
	line := fset.Position(stmt.Pos()).Line

	switch s := stmt.(type) {
	case *ast.IfStmt:
		n := &Node{Kind: KindIf, Line: line}
		n.Children = append(n.Children, lowerExpr(fset, s.Cond))

		for _, st := range s.Body.List {
			n.Children = append(n.Children, lowerStmt(fset, st))
		}

		if s.Else != nil {
			elseNode := lowerStmt(fset, s.Else)
			if elseNode.Kind == KindIf {
				elseNode.IsElseIf = true
			}

			n.Children = append(n.Children, elseNode)
		}

		return n

	case *ast.ForStmt:
		return lowerBody(fset, KindLoop, line, s.Body)

	case *ast.RangeStmt:
		return lowerBody(fset, KindLoop, line, s.Body)

	case *ast.SwitchStmt:
		n := &Node{Kind: KindSwitch, Line: line}

		for _, c := range s.Body.List {
			if cc, ok := c.(*ast.CaseClause); ok {
				caseNode := &Node{Kind: KindCase, Line: fset.Position(cc.Pos()).Line}
				for _, st := range cc.Body {
					caseNode.Children = append(caseNode.Children, lowerStmt(fset, st))
				}

				n.Children = append(n.Children, caseNode)
			}
		}

		return n

	case *ast.TypeSwitchStmt:
		n := &Node{Kind: KindSwitch, Line: line}

		for _, c := range s.Body.List {
			if cc, ok := c.(*ast.CaseClause); ok {
				caseNode := &Node{Kind: KindCase, Line: fset.Position(cc.Pos()).Line}
				for _, st := range cc.Body {
					caseNode.Children = append(caseNode.Children, lowerStmt(fset, st))
				}

				n.Children = append(n.Children, caseNode)
			}
		}

		return n

	case *ast.BlockStmt:
		n := &Node{Kind: KindFile, Line: line} // anonymous block, not scored directly
		for _, st := range s.List {
			n.Children = append(n.Children, lowerStmt(fset, st))
		}

		return n

	case *ast.ExprStmt:
		return lowerExpr(fset, s.X)

	case *ast.AssignStmt:
		n := &Node{Kind: KindAssignment, Line: line}

		for _, lhs := range s.Lhs {
			if sel, ok := lhs.(*ast.SelectorExpr); ok {
				if id, ok := sel.X.(*ast.Ident); ok {
					n.SelfAssignTarget = id.Name + "." + sel.Sel.Name
					n.AccessedFields = append(n.AccessedFields, sel.Sel.Name)
				}
			}
		}

		for _, rhs := range s.Rhs {
			n.Children = append(n.Children, lowerExpr(fset, rhs))
		}

		return n

	case *ast.ReturnStmt:
		n := &Node{Kind: KindIdentifier, Name: "return", Line: line}
		for _, r := range s.Results {
			n.Children = append(n.Children, lowerExpr(fset, r))
		}

		return n

	default:
		return &Node{Kind: KindIdentifier, Line: line}
	}
}

func lowerBody(fset *token.FileSet, kind Kind, line int, body *ast.BlockStmt) *Node {
	n := &Node{Kind: kind, Line: line}

	for _, st := range body.List {
		n.Children = append(n.Children, lowerStmt(fset, st))
	}

	return n
}

func lowerExpr(fset *token.FileSet, expr ast.Expr) *Node {
	if expr == nil {
		return &Node{Kind: KindIdentifier}
	}

	line := fset.Position(expr.Pos()).Line

	switch e := expr.(type) {
	case *ast.BinaryExpr:
		op := ""

		switch e.Op {
		case token.LAND:
			op = LogicalAnd
		case token.LOR:
			op = LogicalOr
		}

		n := &Node{Kind: KindBinaryOp, Operator: op, Line: line}
		n.Children = append(n.Children, lowerExpr(fset, e.X), lowerExpr(fset, e.Y))

		return n

	case *ast.CallExpr:
		name := ""
		if id, ok := e.Fun.(*ast.Ident); ok {
			name = id.Name
		}

		n := &Node{Kind: KindCall, Name: name, Line: line}
		for _, a := range e.Args {
			n.Children = append(n.Children, lowerExpr(fset, a))
		}

		return n

	case *ast.SelectorExpr:
		return &Node{Kind: KindFieldAccess, Name: e.Sel.Name, Line: line}

	case *ast.FuncLit:
		n := &Node{Kind: KindLambda, Line: line}
		for _, st := range e.Body.List {
			n.Children = append(n.Children, lowerStmt(fset, st))
		}

		return n

	default:
		return &Node{Kind: KindIdentifier, Line: line}
	}
}

// isGoAccessor recognizes the conventional Go getter shape: a method with
// no parameters whose single statement returns exactly one field. Go has
// no setter convention distinct from a direct field assignment, so only
// getters are recognized as accessors for this front-end.
func isGoAccessor(fd *ast.FuncDecl) bool {
	if fd.Type.Params != nil && len(fd.Type.Params.List) > 0 {
		return false
	}

	if fd.Body == nil || len(fd.Body.List) != 1 {
		return false
	}

	ret, ok := fd.Body.List[0].(*ast.ReturnStmt)
	if !ok || len(ret.Results) != 1 {
		return false
	}

	if sel, ok := ret.Results[0].(*ast.SelectorExpr); ok {
		_, isIdent := sel.X.(*ast.Ident)

		return isIdent
	}

	return false
}

// collectFieldAccesses walks a method body and returns the receiver
// fields it reads or writes, used by the god-class TCC calculation.
func collectFieldAccesses(fd *ast.FuncDecl, _ string) []string {
	if fd.Body == nil {
		return nil
	}

	var receiverName string

	if fd.Recv != nil && len(fd.Recv.List) > 0 && len(fd.Recv.List[0].Names) > 0 {
		receiverName = fd.Recv.List[0].Names[0].Name
	}

	seen := make(map[string]struct{})

	ast.Inspect(fd.Body, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}

		if id, ok := sel.X.(*ast.Ident); ok && id.Name == receiverName {
			seen[sel.Sel.Name] = struct{}{}
		}

		return true
	})

	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}

	return out
}

// constructorSelfFields extracts field names assigned within a "New*"
// constructor function's composite-literal struct initialization.
func constructorSelfFields(_ *token.FileSet, _ *Node) []*Node {
	// Struct-literal field initialization is already captured by the
	// struct's declared field list; constructors built via composite
	// literals (the idiomatic Go shape) introduce no additional fields
	// beyond those declared on the type, so there is nothing to add
	// here for the canonical front-end. Kept as an explicit no-op so
	// the call site documents the spec rule it satisfies.
	return nil
}
