package interp

import (
	"strings"

	"github.com/nexuslang/nexus/internal/ast"
)

func (i *Interpreter) evalExpr(expr ast.ExprNode, env *Environment) (Value, *RuntimeError) {
	switch e := expr.(type) {
	case *ast.IntLit:
		return Int(e.Value), nil
	case *ast.FloatLit:
		return Float(e.Value), nil
	case *ast.StringLit:
		return Str(e.Value), nil
	case *ast.BoolLit:
		return Bool(e.Value), nil
	case *ast.NullLit:
		return Null, nil
	case *ast.Ident:
		v, ok := env.Get(e.Name)
		if !ok {
			return nil, newNameError(e.Pos, "undefined identifier '"+e.Name+"'")
		}
		return v, nil
	case *ast.Array:
		return i.evalArray(e, env)
	case *ast.MappingLit:
		return i.evalMapping(e, env)
	case *ast.Index:
		return i.evalIndex(e, env)
	case *ast.Member:
		return i.evalMember(e, env)
	case *ast.Binary:
		return i.evalBinary(e, env)
	case *ast.Unary:
		return i.evalUnary(e, env)
	case *ast.Call:
		return i.evalCall(e, env)
	case *ast.Range:
		return i.evalRange(e, env)
	case *ast.KnowledgeQuery:
		return i.evalKnowledgeQuery(e, env)
	case *ast.ListenExpr:
		return i.evalListen(e, env)
	default:
		return nil, newTypeError(expr.Location(), "unsupported expression node")
	}
}

func (i *Interpreter) evalArray(e *ast.Array, env *Environment) (Value, *RuntimeError) {
	elems := make([]Value, len(e.Elements))
	for n, el := range e.Elements {
		v, err := i.evalExpr(el, env)
		if err != nil {
			return nil, err
		}
		elems[n] = v
	}
	return NewArray(elems), nil
}

func (i *Interpreter) evalMapping(e *ast.MappingLit, env *Environment) (Value, *RuntimeError) {
	m := NewMapping()
	for _, pair := range e.Pairs {
		var key string
		switch k := pair.Key.(type) {
		case *ast.StringLit:
			key = k.Value
		case *ast.Ident:
			key = k.Name
		default:
			kv, err := i.evalExpr(pair.Key, env)
			if err != nil {
				return nil, err
			}
			kstr, ok := kv.(Str)
			if !ok {
				return nil, newTypeError(e.Pos, "mapping key must be a string")
			}
			key = string(kstr)
		}
		v, err := i.evalExpr(pair.Value, env)
		if err != nil {
			return nil, err
		}
		m.Set(key, v)
	}
	return m, nil
}

func (i *Interpreter) evalIndex(e *ast.Index, env *Environment) (Value, *RuntimeError) {
	obj, err := i.evalExpr(e.Target, env)
	if err != nil {
		return nil, err
	}
	idx, err := i.evalExpr(e.Index, env)
	if err != nil {
		return nil, err
	}

	switch container := obj.(type) {
	case *Array:
		n, ok := idx.(Int)
		if !ok {
			return nil, newTypeError(e.Pos, "array index must be an integer")
		}
		if n < 0 || int(n) >= len(container.Elements) {
			return nil, newIndexError(e.Pos, "array index out of bounds")
		}
		return container.Elements[n], nil
	case *Mapping:
		key, ok := idx.(Str)
		if !ok {
			return nil, newTypeError(e.Pos, "mapping key must be a string")
		}
		v, found := container.Get(string(key))
		if !found {
			return nil, newKeyError(e.Pos, "mapping has no key '"+string(key)+"'")
		}
		return v, nil
	case Str:
		n, ok := idx.(Int)
		if !ok {
			return nil, newTypeError(e.Pos, "string index must be an integer")
		}
		runes := []rune(string(container))
		if n < 0 || int(n) >= len(runes) {
			return nil, newIndexError(e.Pos, "string index out of bounds")
		}
		return Str(string(runes[n])), nil
	default:
		return nil, newTypeError(e.Pos, "cannot index into "+TypeName(obj))
	}
}

func (i *Interpreter) evalMember(e *ast.Member, env *Environment) (Value, *RuntimeError) {
	obj, err := i.evalExpr(e.Target, env)
	if err != nil {
		return nil, err
	}
	m, ok := obj.(*Mapping)
	if !ok {
		return nil, newTypeError(e.Pos, "cannot access member of "+TypeName(obj))
	}
	v, found := m.Get(e.Name)
	if !found {
		return nil, newKeyError(e.Pos, "mapping has no key '"+e.Name+"'")
	}
	return v, nil
}

func (i *Interpreter) evalUnary(e *ast.Unary, env *Environment) (Value, *RuntimeError) {
	v, err := i.evalExpr(e.Operand, env)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "-":
		switch x := v.(type) {
		case Int:
			return -x, nil
		case Float:
			return -x, nil
		default:
			return nil, newTypeError(e.Pos, "unary - requires a number, got "+TypeName(v))
		}
	case "!":
		return Bool(!Truthy(v)), nil
	default:
		return nil, newTypeError(e.Pos, "unsupported unary operator '"+e.Op+"'")
	}
}

func (i *Interpreter) evalBinary(e *ast.Binary, env *Environment) (Value, *RuntimeError) {
	// && and || short-circuit: the right operand is not evaluated unless it
	// determines the result.
	if e.Op == "&&" {
		left, err := i.evalExpr(e.Left, env)
		if err != nil {
			return nil, err
		}
		if !Truthy(left) {
			return left, nil
		}
		return i.evalExpr(e.Right, env)
	}
	if e.Op == "||" {
		left, err := i.evalExpr(e.Left, env)
		if err != nil {
			return nil, err
		}
		if Truthy(left) {
			return left, nil
		}
		return i.evalExpr(e.Right, env)
	}

	left, err := i.evalExpr(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right, env)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case "==":
		return Bool(Equals(left, right)), nil
	case "!=":
		return Bool(!Equals(left, right)), nil
	case "<", "<=", ">", ">=":
		return evalCompare(e.Op, left, right, e.Pos)
	case "+":
		return evalAdd(left, right, e.Pos)
	case "-", "*", "/", "%":
		return evalArith(e.Op, left, right, e.Pos)
	default:
		return nil, newTypeError(e.Pos, "unsupported binary operator '"+e.Op+"'")
	}
}

func evalAdd(left, right Value, pos ast.Position) (Value, *RuntimeError) {
	if ls, ok := left.(Str); ok {
		rs, ok := right.(Str)
		if !ok {
			return nil, newTypeError(pos, "cannot add string and "+TypeName(right))
		}
		return ls + rs, nil
	}
	if _, ok := right.(Str); ok {
		return nil, newTypeError(pos, "cannot add "+TypeName(left)+" and string")
	}
	return evalArith("+", left, right, pos)
}

func evalArith(op string, left, right Value, pos ast.Position) (Value, *RuntimeError) {
	li, lIsInt := left.(Int)
	ri, rIsInt := right.(Int)
	if lIsInt && rIsInt {
		switch op {
		case "+":
			return li + ri, nil
		case "-":
			return li - ri, nil
		case "*":
			return li * ri, nil
		case "/":
			if ri == 0 {
				return nil, newArithError(pos, "divide-by-zero")
			}
			return li / ri, nil
		case "%":
			if ri == 0 {
				return nil, newArithError(pos, "divide-by-zero")
			}
			return li % ri, nil
		}
	}

	lf, lOk := asFloat(left)
	rf, rOk := asFloat(right)
	if !lOk || !rOk {
		return nil, newTypeError(pos, "arithmetic requires numbers, got "+TypeName(left)+" and "+TypeName(right))
	}
	switch op {
	case "+":
		return Float(lf + rf), nil
	case "-":
		return Float(lf - rf), nil
	case "*":
		return Float(lf * rf), nil
	case "/":
		return Float(lf / rf), nil
	case "%":
		return Float(floatMod(lf, rf)), nil
	default:
		return nil, newTypeError(pos, "unsupported arithmetic operator '"+op+"'")
	}
}

func floatMod(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	m := a - b*float64(int64(a/b))
	return m
}

func evalCompare(op string, left, right Value, pos ast.Position) (Value, *RuntimeError) {
	if ls, ok := left.(Str); ok {
		rs, ok := right.(Str)
		if !ok {
			return nil, newTypeError(pos, "cannot compare string and "+TypeName(right))
		}
		c := strings.Compare(string(ls), string(rs))
		return Bool(orderResult(op, c)), nil
	}

	lf, lOk := asFloat(left)
	rf, rOk := asFloat(right)
	if !lOk || !rOk {
		return nil, newTypeError(pos, "cannot compare "+TypeName(left)+" and "+TypeName(right))
	}
	var c int
	switch {
	case lf < rf:
		c = -1
	case lf > rf:
		c = 1
	default:
		c = 0
	}
	return Bool(orderResult(op, c)), nil
}

func orderResult(op string, c int) bool {
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	default:
		return false
	}
}

func (i *Interpreter) evalRange(e *ast.Range, env *Environment) (Value, *RuntimeError) {
	start, err := i.evalExpr(e.Start, env)
	if err != nil {
		return nil, err
	}
	end, err := i.evalExpr(e.End, env)
	if err != nil {
		return nil, err
	}
	si, ok := start.(Int)
	if !ok {
		return nil, newTypeError(e.Pos, "range bounds must be integers")
	}
	ei, ok := end.(Int)
	if !ok {
		return nil, newTypeError(e.Pos, "range bounds must be integers")
	}
	return &RangeValue{Start: int64(si), End: int64(ei)}, nil
}

func (i *Interpreter) evalKnowledgeQuery(e *ast.KnowledgeQuery, env *Environment) (Value, *RuntimeError) {
	q, err := i.evalExpr(e.Query, env)
	if err != nil {
		return nil, err
	}
	qs, ok := q.(Str)
	if !ok {
		return nil, newTypeError(e.Pos, "knowledge() query must be a string")
	}

	var filters map[string]interface{}
	if e.Filters != nil {
		fv, err := i.evalExpr(e.Filters, env)
		if err != nil {
			return nil, err
		}
		fm, ok := fv.(*Mapping)
		if !ok {
			return nil, newTypeError(e.Pos, "knowledge() filters must be a mapping")
		}
		filters = mappingToPlain(fm)
	}

	// knowledge() never raises (spec.md §5): a host/store failure yields an
	// empty result set rather than propagating an error.
	records, hostErr := i.host.Knowledge(string(qs), filters)
	if hostErr != nil {
		return NewArray(nil), nil
	}

	elems := make([]Value, len(records))
	for n, rec := range records {
		elems[n] = plainToMapping(rec)
	}
	return NewArray(elems), nil
}

func (i *Interpreter) evalListen(e *ast.ListenExpr, env *Environment) (Value, *RuntimeError) {
	timeout, err := i.optionalFloat(e.Timeout, env)
	if err != nil {
		return nil, err
	}
	language, err := i.optionalString(e.Language, env)
	if err != nil {
		return nil, err
	}

	result, hostErr := i.host.Listen(timeout, language)
	if hostErr != nil || result == nil {
		return Null, nil
	}
	return Str(*result), nil
}

func (i *Interpreter) evalCall(e *ast.Call, env *Environment) (Value, *RuntimeError) {
	callee, err := i.evalExpr(e.Callee, env)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(e.Args))
	for n, a := range e.Args {
		v, err := i.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args[n] = v
	}
	named := make(map[string]Value, len(e.NamedArgs))
	for _, na := range e.NamedArgs {
		v, err := i.evalExpr(na.Value, env)
		if err != nil {
			return nil, err
		}
		named[na.Name] = v
	}

	switch fn := callee.(type) {
	case *Intrinsic:
		v, goErr := fn.Fn(i, args, named, e.Pos)
		if goErr != nil {
			if rerr, ok := goErr.(*RuntimeError); ok {
				return nil, rerr
			}
			return nil, newTypeError(e.Pos, goErr.Error())
		}
		return v, nil
	case *Function:
		return i.callFunction(fn, args, named, e.Pos)
	default:
		return nil, newTypeError(e.Pos, "cannot call a value of type "+TypeName(callee))
	}
}

func (i *Interpreter) callFunction(fn *Function, args []Value, named map[string]Value, pos ast.Position) (Value, *RuntimeError) {
	if err := i.checkLimits(pos); err != nil {
		return nil, err
	}

	limit := 4096
	if i.limits != nil {
		limit = i.limits.StackLimit()
	}
	if i.callDepth >= limit {
		return nil, newStackOverflowError(pos, "maximum call depth exceeded")
	}

	if len(args) > len(fn.Params) {
		return nil, newArityError(pos, "too many arguments to '"+fn.Name+"'")
	}

	callEnv := NewEnvironment(fn.Closure)
	filled := make([]bool, len(fn.Params))
	for n, v := range args {
		callEnv.Declare(fn.Params[n].Name, v, true)
		filled[n] = true
	}

	for paramName, v := range named {
		idx := -1
		for n, p := range fn.Params {
			if p.Name == paramName {
				idx = n
				break
			}
		}
		if idx == -1 {
			return nil, newArityError(pos, "'"+fn.Name+"' has no parameter named '"+paramName+"'")
		}
		if filled[idx] {
			return nil, newArityError(pos, "argument '"+paramName+"' given both positionally and by name")
		}
		callEnv.Declare(fn.Params[idx].Name, v, true)
		filled[idx] = true
	}

	for n, p := range fn.Params {
		if filled[n] {
			continue
		}
		if p.Default == nil {
			return nil, newArityError(pos, "missing required argument '"+p.Name+"' to '"+fn.Name+"'")
		}
		dv, err := i.evalExpr(p.Default, callEnv)
		if err != nil {
			return nil, err
		}
		callEnv.Declare(p.Name, dv, true)
	}

	i.callDepth++
	sig, err := i.execBlock(fn.Body, callEnv)
	i.callDepth--
	if err != nil {
		return nil, err.pushTrace(pos, fn.Name)
	}
	if sig != nil && sig.kind == sigReturn {
		return sig.value, nil
	}
	return Null, nil
}

func mappingToPlain(m *Mapping) map[string]interface{} {
	out := make(map[string]interface{}, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Get(k)
		out[k] = valueToPlain(v)
	}
	return out
}

func valueToPlain(v Value) interface{} {
	switch x := v.(type) {
	case Int:
		return int64(x)
	case Float:
		return float64(x)
	case Str:
		return string(x)
	case Bool:
		return bool(x)
	case NullValue:
		return nil
	case *Array:
		out := make([]interface{}, len(x.Elements))
		for n, e := range x.Elements {
			out[n] = valueToPlain(e)
		}
		return out
	case *Mapping:
		return mappingToPlain(x)
	default:
		return nil
	}
}

func plainToMapping(rec map[string]interface{}) *Mapping {
	m := NewMapping()
	for k, v := range rec {
		m.Set(k, plainToValue(v))
	}
	return m
}

func plainToValue(v interface{}) Value {
	switch x := v.(type) {
	case int64:
		return Int(x)
	case int:
		return Int(int64(x))
	case float64:
		return Float(x)
	case string:
		return Str(x)
	case bool:
		return Bool(x)
	case nil:
		return Null
	case []interface{}:
		out := make([]Value, len(x))
		for n, e := range x {
			out[n] = plainToValue(e)
		}
		return NewArray(out)
	case map[string]interface{}:
		return plainToMapping(x)
	default:
		return Null
	}
}
