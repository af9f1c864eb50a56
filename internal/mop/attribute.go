package mop

import (
	"fmt"

	"github.com/moops-lang/moops/internal/types"
)

// Access is the accessor mode of an attribute.
type Access int

const (
	// ReadOnly attributes get a reader and are set only by the constructor
	ReadOnly Access = iota
	// ReadWrite attributes get a reader that doubles as a validating writer
	ReadWrite
	// Private attributes get no accessor and are reachable only from methods
	// of the declaring class
	Private
)

func (a Access) String() string {
	switch a {
	case ReadOnly:
		return "ro"
	case ReadWrite:
		return "rw"
	case Private:
		return "private"
	default:
		return fmt.Sprintf("Access(%d)", int(a))
	}
}

// ParseAccess parses the value of an `is` option.
func ParseAccess(s string) (Access, error) {
	switch s {
	case "ro", "":
		return ReadOnly, nil
	case "rw":
		return ReadWrite, nil
	case "private", "lexical":
		return Private, nil
	default:
		return 0, fmt.Errorf("invalid accessor mode %q (expected ro, rw or private)", s)
	}
}

// Attribute describes one slot of a class.
type Attribute struct {
	Name       string
	Access     Access
	Owner      *Class
	Type       types.Predicate
	HasDefault bool
	Default    any
	Builder    string
	Required   bool
	Trigger    string
}

// TypeName returns the predicate name or "Any"
func (a *Attribute) TypeName() string {
	if a.Type == nil {
		return "Any"
	}
	return a.Type.Name()
}

// Check validates v for this attribute in the context of class.
func (a *Attribute) Check(class string, v any) error {
	if a.Type == nil {
		return nil
	}
	if err := a.Type.Check(v); err != nil {
		return wrapValidation(fmt.Sprintf("%s.%s", class, a.Name), err)
	}
	return nil
}

// initial computes the value an attribute takes when the constructor was not
// given one. ok is false when the attribute stays unset.
func (a *Attribute) initial(o *Instance) (value any, ok bool, err error) {
	switch {
	case a.Builder != "":
		v, err := o.invoke(a.Builder, nil, nil)
		if err != nil {
			return nil, false, fmt.Errorf("builder %s for %s: %w", a.Builder, a.Name, err)
		}
		return v, true, nil
	case a.HasDefault:
		if fn, isFn := a.Default.(func() any); isFn {
			return fn(), true, nil
		}
		return copyValue(a.Default), true, nil
	}
	return nil, false, nil
}
