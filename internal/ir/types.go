package ir

import "github.com/roach88/dimcheck/internal/shape"

// Leaf kinds. They carry no shape semantics; they are kept so diagnostics
// can say what kind of operand was declared.
const (
	KindVariable  = "variable"
	KindParameter = "parameter"
	KindConstant  = "constant"
)

// ValidKinds defines allowed leaf kinds.
var ValidKinds = map[string]bool{
	KindVariable:  true,
	KindParameter: true,
	KindConstant:  true,
}

// Model is a compiled model: declared leaves plus named expressions.
type Model struct {
	Name        string       `json:"name"`
	Purpose     string       `json:"purpose,omitempty"`
	Variables   []Variable   `json:"variables"`
	Expressions []Expression `json:"expressions"`
}

// Variable is a leaf operand with a declared shape.
type Variable struct {
	Name  string      `json:"name"`
	Kind  string      `json:"kind"`
	Shape shape.Shape `json:"shape"`
}

// Expression combines operands by name. Args may name variables or other
// expressions, in any declaration order.
type Expression struct {
	Name string   `json:"name"`
	Op   shape.Op `json:"op"`
	Args []string `json:"args"`
}

// Variable returns the leaf declared under name.
func (m *Model) Variable(name string) (Variable, bool) {
	for _, v := range m.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// Expression returns the expression declared under name.
func (m *Model) Expression(name string) (Expression, bool) {
	for _, e := range m.Expressions {
		if e.Name == name {
			return e, true
		}
	}
	return Expression{}, false
}

// Value converts the model into its canonical IR value.
func (m *Model) Value() Object {
	vars := make(Array, len(m.Variables))
	for i, v := range m.Variables {
		vars[i] = Object{
			"name":  String(v.Name),
			"kind":  String(v.Kind),
			"shape": DimsValue(v.Shape),
		}
	}

	exprs := make(Array, len(m.Expressions))
	for i, e := range m.Expressions {
		args := make(Array, len(e.Args))
		for j, a := range e.Args {
			args[j] = String(a)
		}
		exprs[i] = Object{
			"name": String(e.Name),
			"op":   String(e.Op),
			"args": args,
		}
	}

	return Object{
		"name":        String(m.Name),
		"purpose":     String(m.Purpose),
		"variables":   vars,
		"expressions": exprs,
	}
}

// DimsValue converts a list of dimensions to an IR array of integers.
func DimsValue(dims []int) Array {
	arr := make(Array, len(dims))
	for i, d := range dims {
		arr[i] = Int(d)
	}
	return arr
}
