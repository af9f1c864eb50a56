package ast

// LiteralExpr represents a literal value (string, int64, float64, bool, nil)
type LiteralExpr struct {
	Value interface{}
	Loc   SourceLocation
}

func (l *LiteralExpr) node()     {}
func (l *LiteralExpr) exprNode() {}

func (l *LiteralExpr) Location() SourceLocation {
	return l.Loc
}

// VariableExpr is a $name reference; $self is the invocant
type VariableExpr struct {
	Name string // without sigil
	Loc  SourceLocation
}

func (v *VariableExpr) node()     {}
func (v *VariableExpr) exprNode() {}

func (v *VariableExpr) Location() SourceLocation {
	return v.Loc
}

// IsSelf reports whether the variable is $self
func (v *VariableExpr) IsSelf() bool {
	return v.Name == "self"
}

// BinaryExpr represents a binary operation (a + b, a == b, a ~ b)
type BinaryExpr struct {
	Left     ExprNode
	Operator string // "+", "-", "*", "/", "%", "~", "==", "!=", "<", ">", "<=", ">="
	Right    ExprNode
	Loc      SourceLocation
}

func (b *BinaryExpr) node()     {}
func (b *BinaryExpr) exprNode() {}

func (b *BinaryExpr) Location() SourceLocation {
	return b.Loc
}

// UnaryExpr represents a unary operation (!x, -x, not x)
type UnaryExpr struct {
	Operator string
	Operand  ExprNode
	Loc      SourceLocation
}

func (u *UnaryExpr) node()     {}
func (u *UnaryExpr) exprNode() {}

func (u *UnaryExpr) Location() SourceLocation {
	return u.Loc
}

// LogicalExpr represents short-circuit logic (and, or, &&, ||)
type LogicalExpr struct {
	Left     ExprNode
	Operator string
	Right    ExprNode
	Loc      SourceLocation
}

func (l *LogicalExpr) node()     {}
func (l *LogicalExpr) exprNode() {}

func (l *LogicalExpr) Location() SourceLocation {
	return l.Loc
}

// ArgNode is one call argument; Name is set for `name: value`
type ArgNode struct {
	Name  string
	Value ExprNode
}

// MemberExpr is $obj.name without an argument list: an accessor read,
// or a zero-argument method call.
type MemberExpr struct {
	Object ExprNode
	Name   string
	Loc    SourceLocation
}

func (m *MemberExpr) node()     {}
func (m *MemberExpr) exprNode() {}

func (m *MemberExpr) Location() SourceLocation {
	return m.Loc
}

// CallExpr is a method call on a value: $obj.name(args)
type CallExpr struct {
	Object    ExprNode
	Method    string
	Arguments []*ArgNode
	Loc       SourceLocation
}

func (c *CallExpr) node()     {}
func (c *CallExpr) exprNode() {}

func (c *CallExpr) Location() SourceLocation {
	return c.Loc
}

// ClassCallExpr is Name.method(args): a class method such as
// Calculator.new(num: 1), or a built-in function such as String.upcase($s).
type ClassCallExpr struct {
	Class     string
	Method    string
	Arguments []*ArgNode
	Loc       SourceLocation
}

func (c *ClassCallExpr) node()     {}
func (c *ClassCallExpr) exprNode() {}

func (c *ClassCallExpr) Location() SourceLocation {
	return c.Loc
}

// SuperExpr calls the overridden implementation. Without an argument list
// the current arguments are passed on.
type SuperExpr struct {
	Arguments []*ArgNode
	HasArgs   bool
	Loc       SourceLocation
}

func (s *SuperExpr) node()     {}
func (s *SuperExpr) exprNode() {}

func (s *SuperExpr) Location() SourceLocation {
	return s.Loc
}

// ArrayLiteralExpr represents [a, b, c]
type ArrayLiteralExpr struct {
	Elements []ExprNode
	Loc      SourceLocation
}

func (a *ArrayLiteralExpr) node()     {}
func (a *ArrayLiteralExpr) exprNode() {}

func (a *ArrayLiteralExpr) Location() SourceLocation {
	return a.Loc
}

// HashEntry is one key => value pair
type HashEntry struct {
	Key   string
	Value ExprNode
}

// HashLiteralExpr represents { key => value, "other key" => value }
type HashLiteralExpr struct {
	Entries []*HashEntry
	Loc     SourceLocation
}

func (h *HashLiteralExpr) node()     {}
func (h *HashLiteralExpr) exprNode() {}

func (h *HashLiteralExpr) Location() SourceLocation {
	return h.Loc
}

// IndexExpr represents $list[0] or $hash["key"]
type IndexExpr struct {
	Object ExprNode
	Index  ExprNode
	Loc    SourceLocation
}

func (i *IndexExpr) node()     {}
func (i *IndexExpr) exprNode() {}

func (i *IndexExpr) Location() SourceLocation {
	return i.Loc
}
