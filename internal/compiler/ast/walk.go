package ast

// Inspect traverses statements and expressions depth-first, calling fn for
// each node. When fn returns false the node's children are skipped.
func Inspect(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, c := range n.Classes {
			Inspect(c, fn)
		}
		inspectStmts(n.Statements, fn)
	case *ClassNode:
		for _, a := range n.Attributes {
			Inspect(a, fn)
		}
		for _, m := range n.Methods {
			Inspect(m, fn)
		}
		for _, m := range n.Modifiers {
			Inspect(m, fn)
		}
	case *AttributeNode:
		inspectExpr(n.Default, fn)
	case *MethodNode:
		for _, p := range n.Params {
			Inspect(p, fn)
		}
		inspectStmts(n.Body, fn)
	case *ParamNode:
		inspectExpr(n.Default, fn)
	case *ModifierNode:
		inspectStmts(n.Body, fn)

	case *ExprStmt:
		inspectExpr(n.Expr, fn)
	case *LetStmt:
		inspectExpr(n.Value, fn)
	case *AssignmentStmt:
		inspectExpr(n.Target, fn)
		inspectExpr(n.Value, fn)
	case *ReturnStmt:
		inspectExpr(n.Value, fn)
	case *IfStmt:
		inspectExpr(n.Condition, fn)
		inspectStmts(n.Then, fn)
		for _, b := range n.ElsIfs {
			inspectExpr(b.Condition, fn)
			inspectStmts(b.Body, fn)
		}
		inspectStmts(n.Else, fn)
	case *TryStmt:
		inspectStmts(n.Body, fn)
		inspectStmts(n.Catch, fn)
	case *DieStmt:
		inspectExpr(n.Value, fn)
	case *SayStmt:
		for _, a := range n.Args {
			inspectExpr(a, fn)
		}

	case *BinaryExpr:
		inspectExpr(n.Left, fn)
		inspectExpr(n.Right, fn)
	case *LogicalExpr:
		inspectExpr(n.Left, fn)
		inspectExpr(n.Right, fn)
	case *UnaryExpr:
		inspectExpr(n.Operand, fn)
	case *MemberExpr:
		inspectExpr(n.Object, fn)
	case *CallExpr:
		inspectExpr(n.Object, fn)
		inspectArgs(n.Arguments, fn)
	case *ClassCallExpr:
		inspectArgs(n.Arguments, fn)
	case *SuperExpr:
		inspectArgs(n.Arguments, fn)
	case *ArrayLiteralExpr:
		for _, e := range n.Elements {
			inspectExpr(e, fn)
		}
	case *HashLiteralExpr:
		for _, e := range n.Entries {
			inspectExpr(e.Value, fn)
		}
	case *IndexExpr:
		inspectExpr(n.Object, fn)
		inspectExpr(n.Index, fn)
	}
}

func inspectStmts(stmts []StmtNode, fn func(Node) bool) {
	for _, s := range stmts {
		Inspect(s, fn)
	}
}

// inspectExpr skips nil expressions, which are typed nils inside Node.
func inspectExpr(e ExprNode, fn func(Node) bool) {
	if e != nil {
		Inspect(e, fn)
	}
}

func inspectArgs(args []*ArgNode, fn func(Node) bool) {
	for _, a := range args {
		inspectExpr(a.Value, fn)
	}
}
