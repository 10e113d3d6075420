package oracle

import (
	"math/big"
	"sort"
)

// Expr is a node in the expression tree. Subtraction is stored as addition of a
// term multiplied by -1 and division as multiplication by a power of -1, so
// only six node kinds exist.
type Expr interface {
	exprNode()
}

// Num is an exact rational constant.
type Num struct{ V *big.Rat }

// Sym is a named symbol: a variable, a free parameter, or one of the constants pi, e, Infinity.
type Sym struct{ Name string }

// Add is a sum of terms.
type Add struct{ Terms []Expr }

// Mul is a product of factors.
type Mul struct{ Factors []Expr }

// Pow is Base raised to Exp.
type Pow struct{ Base, Exp Expr }

// Call is a named function applied to arguments.
type Call struct {
	Fn   string
	Args []Expr
}

func (*Num) exprNode()  {}
func (*Sym) exprNode()  {}
func (*Add) exprNode()  {}
func (*Mul) exprNode()  {}
func (*Pow) exprNode()  {}
func (*Call) exprNode() {}

// constants are symbols with a fixed numeric value; they are never solve variables.
var constants = map[string]bool{"pi": true, "e": true, "Infinity": true}

func num(n int64) *Num { return &Num{V: big.NewRat(n, 1)} }

func frac(a, b int64) *Num { return &Num{V: big.NewRat(a, b)} }

func ratNum(r *big.Rat) *Num { return &Num{V: new(big.Rat).Set(r)} }

func sym(name string) *Sym { return &Sym{Name: name} }

func add(terms ...Expr) Expr { return &Add{Terms: terms} }

func mul(factors ...Expr) Expr { return &Mul{Factors: factors} }

func pow(base, exp Expr) Expr { return &Pow{Base: base, Exp: exp} }

func call(fn string, args ...Expr) Expr { return &Call{Fn: fn, Args: args} }

func neg(e Expr) Expr { return mul(num(-1), e) }

func sub(a, b Expr) Expr { return add(a, neg(b)) }

func div(a, b Expr) Expr { return mul(a, pow(b, num(-1))) }

// asNum returns the rational value of e when e is a number node.
func asNum(e Expr) (*big.Rat, bool) {
	if n, ok := e.(*Num); ok {
		return n.V, true
	}
	return nil, false
}

// isInt reports whether e is the number node n.
func isInt(e Expr, n int64) bool {
	r, ok := asNum(e)
	return ok && r.IsInt() && r.Num().IsInt64() && r.Num().Int64() == n
}

// containsSym reports whether the symbol name occurs anywhere in e.
func containsSym(e Expr, name string) bool {
	switch n := e.(type) {
	case *Sym:
		return n.Name == name
	case *Add:
		for _, t := range n.Terms {
			if containsSym(t, name) {
				return true
			}
		}
	case *Mul:
		for _, f := range n.Factors {
			if containsSym(f, name) {
				return true
			}
		}
	case *Pow:
		return containsSym(n.Base, name) || containsSym(n.Exp, name)
	case *Call:
		for _, a := range n.Args {
			if containsSym(a, name) {
				return true
			}
		}
	}
	return false
}

// FreeSymbols returns the sorted non-constant symbol names in e.
func FreeSymbols(e Expr) []string {
	seen := make(map[string]bool)
	collectSymbols(e, seen)
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func collectSymbols(e Expr, out map[string]bool) {
	switch n := e.(type) {
	case *Sym:
		if !constants[n.Name] {
			out[n.Name] = true
		}
	case *Add:
		for _, t := range n.Terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range n.Factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(n.Base, out)
		collectSymbols(n.Exp, out)
	case *Call:
		for _, a := range n.Args {
			collectSymbols(a, out)
		}
	}
}

// substitute replaces every occurrence of the symbol name with val.
func substitute(e Expr, name string, val Expr) Expr {
	switch n := e.(type) {
	case *Sym:
		if n.Name == name {
			return val
		}
		return n
	case *Add:
		terms := make([]Expr, len(n.Terms))
		for i, t := range n.Terms {
			terms[i] = substitute(t, name, val)
		}
		return &Add{Terms: terms}
	case *Mul:
		factors := make([]Expr, len(n.Factors))
		for i, f := range n.Factors {
			factors[i] = substitute(f, name, val)
		}
		return &Mul{Factors: factors}
	case *Pow:
		return &Pow{Base: substitute(n.Base, name, val), Exp: substitute(n.Exp, name, val)}
	case *Call:
		args := make([]Expr, len(n.Args))
		for i, a := range n.Args {
			args[i] = substitute(a, name, val)
		}
		return &Call{Fn: n.Fn, Args: args}
	}
	return e
}
