package interp

import (
	"errors"
	"fmt"
	"strings"

	"github.com/moops-lang/moops/internal/compiler/ast"
	"github.com/moops-lang/moops/internal/mop"
	"github.com/moops-lang/moops/internal/types"
)

// outcome is the result of running statements. value is the returned
// value, or the value of the last expression statement when nothing
// returned explicitly.
type outcome struct {
	value    any
	returned bool
}

// execBlock runs stmts in a nested scope
func (in *Interpreter) execBlock(f *frame, stmts []ast.StmtNode) (outcome, error) {
	return in.execStmts(f.child(), stmts)
}

func (in *Interpreter) execStmts(f *frame, stmts []ast.StmtNode) (outcome, error) {
	var last outcome
	for _, stmt := range stmts {
		out, err := in.exec(f, stmt)
		if err != nil {
			return outcome{}, err
		}
		if out.returned {
			return out, nil
		}
		last = out
	}
	return last, nil
}

func (in *Interpreter) exec(f *frame, stmt ast.StmtNode) (outcome, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		v, err := in.eval(f, s.Expr)
		return outcome{value: v}, err

	case *ast.LetStmt:
		var v any
		if s.Value != nil {
			var err error
			if v, err = in.eval(f, s.Value); err != nil {
				return outcome{}, err
			}
		}
		f.env.Define(s.Name, v)
		return outcome{}, nil

	case *ast.AssignmentStmt:
		v, err := in.eval(f, s.Value)
		if err != nil {
			return outcome{}, err
		}
		return outcome{}, in.assign(f, s.Target, v)

	case *ast.ReturnStmt:
		if f.inv == nil {
			return outcome{}, failf(s.Loc, "return is only allowed inside methods")
		}
		var v any
		if s.Value != nil {
			var err error
			if v, err = in.eval(f, s.Value); err != nil {
				return outcome{}, err
			}
		}
		return outcome{value: v, returned: true}, nil

	case *ast.IfStmt:
		return in.execIf(f, s)

	case *ast.TryStmt:
		return in.execTry(f, s)

	case *ast.DieStmt:
		v, err := in.eval(f, s.Value)
		if err != nil {
			return outcome{}, err
		}
		if ex, ok := v.(*Exception); ok {
			return outcome{}, ex.raw
		}
		return outcome{}, at(s.Loc, &mop.Died{Value: v})

	case *ast.SayStmt:
		parts := make([]string, len(s.Args))
		for i, arg := range s.Args {
			v, err := in.eval(f, arg)
			if err != nil {
				return outcome{}, err
			}
			parts[i] = types.Stringify(v)
		}
		if _, err := fmt.Fprintln(in.out, strings.Join(parts, "")); err != nil {
			return outcome{}, at(s.Loc, &outputError{err: err})
		}
		return outcome{}, nil
	}
	return outcome{}, failf(stmt.Location(), "unsupported statement %T", stmt)
}

func (in *Interpreter) execIf(f *frame, s *ast.IfStmt) (outcome, error) {
	cond, err := in.eval(f, s.Condition)
	if err != nil {
		return outcome{}, err
	}
	if truthy(cond) != s.Unless {
		return in.execBlock(f, s.Then)
	}
	for _, branch := range s.ElsIfs {
		cond, err := in.eval(f, branch.Condition)
		if err != nil {
			return outcome{}, err
		}
		if truthy(cond) {
			return in.execBlock(f, branch.Body)
		}
	}
	if s.Else != nil {
		return in.execBlock(f, s.Else)
	}
	return outcome{}, nil
}

// execTry runs the body and, on failure, the catch block with the error
// bound as an Exception. Output errors from say are not caught.
func (in *Interpreter) execTry(f *frame, s *ast.TryStmt) (outcome, error) {
	out, err := in.execBlock(f, s.Body)
	if err == nil {
		return out, nil
	}

	var sink *outputError
	if errors.As(err, &sink) {
		return outcome{}, err
	}

	catch := f.child()
	if s.CatchVar != "" {
		catch.env.Define(s.CatchVar, newException(err))
	}
	return in.execStmts(catch, s.Catch)
}

// outputError marks a failed write to the output stream
type outputError struct {
	err error
}

func (e *outputError) Error() string {
	return "writing output: " + e.err.Error()
}

func (e *outputError) Unwrap() error {
	return e.err
}
