// Package interp implements NexusLang's tree-walking interpreter
// (spec.md §4.3): single-threaded, eager evaluation, lexically scoped,
// closures over block scopes, with internal sentinel signals for break,
// continue, and return that are never observable to user code.
package interp

import (
	"github.com/nexuslang/nexus/internal/ast"
	"github.com/nexuslang/nexus/internal/host"
)

// signalKind distinguishes the internal control-flow signals a statement
// execution can produce.
type signalKind int

const (
	sigNone signalKind = iota
	sigBreak
	sigContinue
	sigReturn
)

type signal struct {
	kind  signalKind
	value Value
}

// Interpreter executes one program against one host and one fresh
// personality record and environment. Interpreters are not reused across
// executions — spec.md §5 requires that the personality record, environment,
// and output sink stay per-execution.
type Interpreter struct {
	host        host.Capability
	limits      *host.Limits
	personality *Personality
	module      *Environment
	callDepth   int
	lastValue   Value // most recent top-level expression value, for the REPL
}

// New builds an Interpreter with a fresh module frame seeded with host
// intrinsics (print, now, get_trait) and an empty personality record.
func New(capability host.Capability, limits *host.Limits) *Interpreter {
	i := &Interpreter{
		host:        capability,
		limits:      limits,
		personality: NewPersonality(),
		module:      NewEnvironment(nil),
		lastValue:   Null,
	}
	i.installIntrinsics()
	return i
}

// ModuleEnv exposes the module frame, e.g. so a REPL can keep reusing it
// across lines.
func (i *Interpreter) ModuleEnv() *Environment {
	return i.module
}

// LastValue returns the most recently evaluated top-level expression value,
// the REPL's "value of the final expression" result.
func (i *Interpreter) LastValue() Value {
	return i.lastValue
}

// Run executes every top-level statement of prog against the module frame
// in order, stopping at the first error.
func (i *Interpreter) Run(prog *ast.Program) *RuntimeError {
	for _, stmt := range prog.Statements {
		if _, err := i.execStmt(stmt, i.module); err != nil {
			return err
		}
	}
	return nil
}

// checkLimits enforces the cancel flag at loop back-edges and function
// calls (spec.md §5).
func (i *Interpreter) checkLimits(pos ast.Position) *RuntimeError {
	if i.limits != nil && i.limits.Cancelled() {
		return newCancelledError(pos, "execution cancelled")
	}
	return nil
}

// --- statement execution ---

func (i *Interpreter) execStmt(stmt ast.StmtNode, env *Environment) (*signal, *RuntimeError) {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		return nil, i.execLet(s, env)
	case *ast.AssignStmt:
		return nil, i.execAssign(s, env)
	case *ast.ExprStmt:
		v, err := i.evalExpr(s.Expr, env)
		if err != nil {
			return nil, err
		}
		i.lastValue = v
		return nil, nil
	case *ast.Block:
		return i.execBlock(s, NewEnvironment(env))
	case *ast.IfStmt:
		return i.execIf(s, env)
	case *ast.WhileStmt:
		return i.execWhile(s, env)
	case *ast.ForStmt:
		return i.execFor(s, env)
	case *ast.BreakStmt:
		return &signal{kind: sigBreak}, nil
	case *ast.ContinueStmt:
		return &signal{kind: sigContinue}, nil
	case *ast.ReturnStmt:
		return i.execReturn(s, env)
	case *ast.FunctionDecl:
		return nil, i.execFunctionDecl(s, env)
	case *ast.PersonalityBlock:
		return nil, i.execPersonalityBlock(s)
	case *ast.VoiceBlock:
		return i.execBlock(s.Body, NewEnvironment(env))
	case *ast.SayStmt:
		return nil, i.execSay(s, env)
	case *ast.OptimizeSelfStmt:
		return nil, i.execOptimizeSelf(s, env)
	default:
		return nil, newTypeError(stmt.Location(), "unsupported statement node")
	}
}

func (i *Interpreter) execBlock(b *ast.Block, env *Environment) (*signal, *RuntimeError) {
	for _, stmt := range b.Statements {
		sig, err := i.execStmt(stmt, env)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			return sig, nil
		}
	}
	return nil, nil
}

func (i *Interpreter) execLet(s *ast.LetStmt, env *Environment) *RuntimeError {
	value, err := i.evalExpr(s.Value, env)
	if err != nil {
		return err
	}
	if !env.Declare(s.Name, value, !s.Const) {
		return newNameError(s.Pos, "redeclaration of '"+s.Name+"' in the same scope")
	}
	return nil
}

func (i *Interpreter) execAssign(s *ast.AssignStmt, env *Environment) *RuntimeError {
	value, err := i.evalExpr(s.Value, env)
	if err != nil {
		return err
	}

	switch target := s.Target.(type) {
	case *ast.Ident:
		switch env.Set(target.Name, value) {
		case assignUnbound:
			return newNameError(target.Pos, "assignment to unbound identifier '"+target.Name+"'")
		case assignImmutable:
			return newNameError(target.Pos, "assignment to const '"+target.Name+"'")
		}
		return nil
	case *ast.Index:
		return i.assignIndex(target, value, env)
	case *ast.Member:
		return i.assignMember(target, value, env)
	default:
		return newTypeError(s.Pos, "invalid assignment target")
	}
}

func (i *Interpreter) assignIndex(target *ast.Index, value Value, env *Environment) *RuntimeError {
	obj, err := i.evalExpr(target.Target, env)
	if err != nil {
		return err
	}
	idx, err := i.evalExpr(target.Index, env)
	if err != nil {
		return err
	}

	switch container := obj.(type) {
	case *Array:
		n, ok := idx.(Int)
		if !ok {
			return newTypeError(target.Pos, "array index must be an integer")
		}
		if n < 0 || int(n) >= len(container.Elements) {
			return newIndexError(target.Pos, "array index out of bounds")
		}
		container.Elements[n] = value
		return nil
	case *Mapping:
		key, ok := idx.(Str)
		if !ok {
			return newTypeError(target.Pos, "mapping key must be a string")
		}
		container.Set(string(key), value)
		return nil
	default:
		return newTypeError(target.Pos, "cannot index into "+TypeName(obj))
	}
}

func (i *Interpreter) assignMember(target *ast.Member, value Value, env *Environment) *RuntimeError {
	obj, err := i.evalExpr(target.Target, env)
	if err != nil {
		return err
	}
	m, ok := obj.(*Mapping)
	if !ok {
		return newTypeError(target.Pos, "cannot assign member of "+TypeName(obj))
	}
	m.Set(target.Name, value)
	return nil
}

func (i *Interpreter) execIf(s *ast.IfStmt, env *Environment) (*signal, *RuntimeError) {
	cond, err := i.evalExpr(s.Cond, env)
	if err != nil {
		return nil, err
	}
	if Truthy(cond) {
		return i.execBlock(s.Then, NewEnvironment(env))
	}
	if s.Else == nil {
		return nil, nil
	}
	return i.execStmt(s.Else, env)
}

func (i *Interpreter) execWhile(s *ast.WhileStmt, env *Environment) (*signal, *RuntimeError) {
	for {
		if err := i.checkLimits(s.Pos); err != nil {
			return nil, err
		}
		cond, err := i.evalExpr(s.Cond, env)
		if err != nil {
			return nil, err
		}
		if !Truthy(cond) {
			return nil, nil
		}
		sig, err := i.execBlock(s.Body, NewEnvironment(env))
		if err != nil {
			return nil, err
		}
		if sig != nil {
			switch sig.kind {
			case sigBreak:
				return nil, nil
			case sigReturn:
				return sig, nil
			case sigContinue:
				// fall through to next iteration
			}
		}
	}
}

func (i *Interpreter) execFor(s *ast.ForStmt, env *Environment) (*signal, *RuntimeError) {
	iterable, err := i.evalExpr(s.Iterable, env)
	if err != nil {
		return nil, err
	}

	items, iterErr := materializeIterable(iterable, s.Pos)
	if iterErr != nil {
		return nil, iterErr
	}

	for _, item := range items {
		if err := i.checkLimits(s.Pos); err != nil {
			return nil, err
		}
		loopEnv := NewEnvironment(env)
		loopEnv.Declare(s.Name, item, true)
		sig, err := i.execBlock(s.Body, loopEnv)
		if err != nil {
			return nil, err
		}
		if sig != nil {
			switch sig.kind {
			case sigBreak:
				return nil, nil
			case sigReturn:
				return sig, nil
			case sigContinue:
				continue
			}
		}
	}
	return nil, nil
}

// materializeIterable snapshots the sequence a for-loop will walk, so
// mutation of the source collection during iteration never affects the
// loop in progress (spec.md §4.3's mutation-during-iteration Open
// Question, resolved here as "snapshot").
func materializeIterable(v Value, pos ast.Position) ([]Value, *RuntimeError) {
	switch x := v.(type) {
	case *Array:
		out := make([]Value, len(x.Elements))
		copy(out, x.Elements)
		return out, nil
	case *Mapping:
		out := make([]Value, len(x.keys))
		for n, k := range x.keys {
			out[n] = Str(k)
		}
		return out, nil
	case Str:
		runes := []rune(string(x))
		out := make([]Value, len(runes))
		for n, r := range runes {
			out[n] = Str(string(r))
		}
		return out, nil
	case *RangeValue:
		if x.End <= x.Start {
			return nil, nil
		}
		out := make([]Value, 0, x.End-x.Start)
		for n := x.Start; n < x.End; n++ {
			out = append(out, Int(n))
		}
		return out, nil
	default:
		return nil, newTypeError(pos, "value of type "+TypeName(v)+" is not iterable")
	}
}

func (i *Interpreter) execReturn(s *ast.ReturnStmt, env *Environment) (*signal, *RuntimeError) {
	if s.Value == nil {
		return &signal{kind: sigReturn, value: Null}, nil
	}
	v, err := i.evalExpr(s.Value, env)
	if err != nil {
		return nil, err
	}
	return &signal{kind: sigReturn, value: v}, nil
}

func (i *Interpreter) execFunctionDecl(s *ast.FunctionDecl, env *Environment) *RuntimeError {
	fn := &Function{Name: s.Name, Params: s.Params, Body: s.Body, Closure: env}
	if !env.Declare(s.Name, fn, false) {
		return newNameError(s.Pos, "redeclaration of '"+s.Name+"' in the same scope")
	}
	return nil
}

func (i *Interpreter) execPersonalityBlock(s *ast.PersonalityBlock) *RuntimeError {
	for _, trait := range s.Traits {
		if !i.personality.Set(trait.Name, trait.Value) {
			return newTraitRangeError(trait.Pos, "trait '"+trait.Name+"' value out of [0.0, 1.0]")
		}
	}
	return nil
}

func (i *Interpreter) execSay(s *ast.SayStmt, env *Environment) *RuntimeError {
	text, err := i.evalExpr(s.Text, env)
	if err != nil {
		return err
	}
	textStr, ok := text.(Str)
	if !ok {
		return newTypeError(s.Pos, "say() text must be a string")
	}

	emotion, err := i.optionalString(s.Emotion, env)
	if err != nil {
		return err
	}
	voiceID, err := i.optionalString(s.VoiceID, env)
	if err != nil {
		return err
	}
	speed, err := i.optionalFloat(s.Speed, env)
	if err != nil {
		return err
	}

	_ = i.host.Say(string(textStr), emotion, voiceID, speed)
	return nil
}

func (i *Interpreter) execOptimizeSelf(s *ast.OptimizeSelfStmt, env *Environment) *RuntimeError {
	metric, err := i.evalExpr(s.Metric, env)
	if err != nil {
		return err
	}
	metricStr, ok := metric.(Str)
	if !ok {
		return newTypeError(s.Pos, "optimize_self() metric must be a string")
	}
	target, err := i.evalExpr(s.Target, env)
	if err != nil {
		return err
	}
	targetFloat, ok := asFloat(target)
	if !ok {
		return newTypeError(s.Pos, "optimize_self() target must be a number")
	}
	strategy, err := i.optionalString(s.Strategy, env)
	if err != nil {
		return err
	}

	_ = i.host.OptimizeSelf(string(metricStr), targetFloat, strategy)
	return nil
}

func (i *Interpreter) optionalString(expr ast.ExprNode, env *Environment) (*string, *RuntimeError) {
	if expr == nil {
		return nil, nil
	}
	v, err := i.evalExpr(expr, env)
	if err != nil {
		return nil, err
	}
	s, ok := v.(Str)
	if !ok {
		return nil, newTypeError(expr.Location(), "expected a string argument")
	}
	str := string(s)
	return &str, nil
}

func (i *Interpreter) optionalFloat(expr ast.ExprNode, env *Environment) (*float64, *RuntimeError) {
	if expr == nil {
		return nil, nil
	}
	v, err := i.evalExpr(expr, env)
	if err != nil {
		return nil, err
	}
	f, ok := asFloat(v)
	if !ok {
		return nil, newTypeError(expr.Location(), "expected a numeric argument")
	}
	return &f, nil
}

func asFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case Int:
		return float64(x), true
	case Float:
		return float64(x), true
	default:
		return 0, false
	}
}
