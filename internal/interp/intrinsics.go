package interp

import "github.com/nexuslang/nexus/internal/ast"

// installIntrinsics seeds the module frame with the handful of host-backed
// functions callable as ordinary identifiers: print, now, and get_trait.
// knowledge, say, listen, and optimize_self instead parse into their own
// dedicated AST nodes (spec.md §4.2) and are evaluated directly by the
// interpreter rather than looked up by name.
func (i *Interpreter) installIntrinsics() {
	i.module.Declare("print", &Intrinsic{Name: "print", Fn: intrinsicPrint}, false)
	i.module.Declare("now", &Intrinsic{Name: "now", Fn: intrinsicNow}, false)
	i.module.Declare("get_trait", &Intrinsic{Name: "get_trait", Fn: intrinsicGetTrait}, false)
}

func intrinsicPrint(interp *Interpreter, args []Value, named map[string]Value, pos ast.Position) (Value, error) {
	if len(args) != 1 {
		return nil, newArityError(pos, "print() takes exactly one argument")
	}
	interp.host.Print(Render(args[0]))
	return Null, nil
}

func intrinsicNow(interp *Interpreter, args []Value, named map[string]Value, pos ast.Position) (Value, error) {
	if len(args) != 0 {
		return nil, newArityError(pos, "now() takes no arguments")
	}
	return Int(interp.host.Now()), nil
}

func intrinsicGetTrait(interp *Interpreter, args []Value, named map[string]Value, pos ast.Position) (Value, error) {
	if len(args) != 1 {
		return nil, newArityError(pos, "get_trait() takes exactly one argument")
	}
	name, ok := args[0].(Str)
	if !ok {
		return nil, newTypeError(pos, "get_trait() argument must be a string")
	}
	v, found := interp.personality.Get(string(name))
	if !found {
		return Null, nil
	}
	return Float(v), nil
}
