// Package formula turns free-form math input into canonical infix syntax and
// inspects the result: linting, classification, special-formula lookup and
// main-variable detection.
package formula

// Type is the kind of problem a canonical formula poses.
type Type string

const (
	TypeEquation   Type = "equation"
	TypeExpression Type = "expression"
	TypeDerivative Type = "derivative"
	TypeIntegral   Type = "integral"
	TypeSpecial    Type = "special"
)

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	switch t {
	case TypeEquation, TypeExpression, TypeDerivative, TypeIntegral, TypeSpecial:
		return true
	}
	return false
}
