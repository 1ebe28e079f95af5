package bytecode

import (
	"encoding/binary"
	"fmt"

	"github.com/nexuslang/nexus/internal/ast"
)

// CompileError is raised when the compiler rejects an AST shape the parser
// did not catch — e.g. break/continue outside a loop reached through a
// function boundary that invalidates the lexical nesting check (spec.md §9).
type CompileError struct {
	Message string
	Pos     ast.Position
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("CompileError at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// loopPatch collects the code offsets of break/continue jumps belonging to
// one enclosing loop, patched to their real targets once the loop's bounds
// are known.
type loopPatch struct {
	breaks    []int
	continues []int
}

// compiler lowers one AST into a Module. The compiler performs no
// optimization (spec.md §4.4): its only job is faithful, deterministic
// lowering and compact encoding.
type compiler struct {
	code        []byte
	consts      []Const
	constIndex  map[string]uint32
	symbols     []Symbol
	symbolIndex map[string]uint32
	loops       []*loopPatch
}

// intrinsicNames are seeded into the symbol table as SymbolIntrinsic
// entries, matching the module frame's installIntrinsics plus the
// dedicated-node forms that still resolve through CALL_INTRINSIC.
var intrinsicNames = []string{"print", "now", "get_trait", "knowledge", "say", "listen", "optimize_self"}

// Compile lowers prog into a self-contained, deterministic .nxb Module
// (spec.md §4.4): compiling the same AST twice yields byte-identical output
// because the constant pool is ordered by first-use and the symbol table by
// first reference, with no iteration over Go maps reaching the wire format.
func Compile(prog *ast.Program) (*Module, error) {
	c := &compiler{
		constIndex:  make(map[string]uint32),
		symbolIndex: make(map[string]uint32),
	}
	for _, name := range intrinsicNames {
		c.internSymbol(name, SymbolIntrinsic)
	}

	for _, stmt := range prog.Statements {
		if err := c.compileStmt(stmt); err != nil {
			return nil, err
		}
	}

	return &Module{
		Version: Version,
		Code:    c.code,
		Consts:  c.consts,
		Symbols: c.symbols,
	}, nil
}

func (c *compiler) emit(op Op, operands ...int32) int {
	offset := len(c.code)
	c.code = append(c.code, byte(op))
	for _, operand := range operands {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], uint32(operand))
		c.code = append(c.code, buf[:]...)
	}
	return offset
}

// patchOperand overwrites the first 4-byte operand at a previously emitted
// instruction's offset (opcode byte + 1).
func (c *compiler) patchOperand(instrOffset int, value int32) {
	binary.LittleEndian.PutUint32(c.code[instrOffset+1:instrOffset+5], uint32(value))
}

func (c *compiler) internConst(ct Const) int32 {
	key := constKey(ct)
	if idx, ok := c.constIndex[key]; ok {
		return int32(idx)
	}
	idx := uint32(len(c.consts))
	c.consts = append(c.consts, ct)
	c.constIndex[key] = idx
	return int32(idx)
}

func constKey(ct Const) string {
	switch ct.Tag {
	case ConstInt:
		return fmt.Sprintf("i:%d", ct.I)
	case ConstFloat:
		return fmt.Sprintf("f:%g", ct.F)
	case ConstString:
		return "s:" + ct.S
	default:
		return "n:"
	}
}

func (c *compiler) internSymbol(name string, kind SymbolKind) uint32 {
	if idx, ok := c.symbolIndex[name]; ok {
		return idx
	}
	idx := uint32(len(c.symbols))
	c.symbols = append(c.symbols, Symbol{ID: idx, Kind: kind, Name: name})
	c.symbolIndex[name] = idx
	return idx
}

func (c *compiler) compileBlock(b *ast.Block) error {
	for _, stmt := range b.Statements {
		if err := c.compileStmt(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) compileStmt(stmt ast.StmtNode) error {
	switch s := stmt.(type) {
	case *ast.LetStmt:
		if err := c.compileExpr(s.Value); err != nil {
			return err
		}
		sym := c.internSymbol(s.Name, SymbolUser)
		c.emit(OpStoreNew, int32(sym))
		return nil

	case *ast.AssignStmt:
		return c.compileAssign(s)

	case *ast.ExprStmt:
		if err := c.compileExpr(s.Expr); err != nil {
			return err
		}
		c.emit(OpPop)
		return nil

	case *ast.Block:
		return c.compileBlock(s)

	case *ast.IfStmt:
		return c.compileIf(s)

	case *ast.WhileStmt:
		return c.compileWhile(s)

	case *ast.ForStmt:
		return c.compileFor(s)

	case *ast.BreakStmt:
		if len(c.loops) == 0 {
			return &CompileError{Message: "break outside a loop", Pos: s.Pos}
		}
		top := c.loops[len(c.loops)-1]
		offset := c.emit(OpJump, 0)
		top.breaks = append(top.breaks, offset)
		return nil

	case *ast.ContinueStmt:
		if len(c.loops) == 0 {
			return &CompileError{Message: "continue outside a loop", Pos: s.Pos}
		}
		top := c.loops[len(c.loops)-1]
		offset := c.emit(OpJump, 0)
		top.continues = append(top.continues, offset)
		return nil

	case *ast.ReturnStmt:
		if s.Value != nil {
			if err := c.compileExpr(s.Value); err != nil {
				return err
			}
		} else {
			c.emit(OpLoadConst, c.internConst(Const{Tag: ConstNull}))
		}
		c.emit(OpReturn)
		return nil

	case *ast.FunctionDecl:
		return c.compileFunctionDecl(s)

	case *ast.PersonalityBlock:
		for _, trait := range s.Traits {
			c.emit(OpLoadConst, c.internConst(Const{Tag: ConstFloat, F: trait.Value}))
			nameIdx := c.internConst(Const{Tag: ConstString, S: trait.Name})
			c.emit(OpSetTrait, nameIdx)
		}
		return nil

	case *ast.VoiceBlock:
		return c.compileBlock(s.Body)

	case *ast.SayStmt:
		return c.compileSay(s)

	case *ast.OptimizeSelfStmt:
		return c.compileOptimizeSelf(s)

	default:
		return &CompileError{Message: "unsupported statement node", Pos: stmt.Location()}
	}
}

func (c *compiler) compileAssign(s *ast.AssignStmt) error {
	switch target := s.Target.(type) {
	case *ast.Ident:
		if err := c.compileExpr(s.Value); err != nil {
			return err
		}
		sym := c.internSymbol(target.Name, SymbolUser)
		c.emit(OpStore, int32(sym))
		return nil
	case *ast.Index:
		if err := c.compileExpr(target.Target); err != nil {
			return err
		}
		if err := c.compileExpr(target.Index); err != nil {
			return err
		}
		if err := c.compileExpr(s.Value); err != nil {
			return err
		}
		c.emit(OpSetIndex)
		return nil
	case *ast.Member:
		if err := c.compileExpr(target.Target); err != nil {
			return err
		}
		if err := c.compileExpr(s.Value); err != nil {
			return err
		}
		nameIdx := c.internConst(Const{Tag: ConstString, S: target.Name})
		c.emit(OpSetMember, nameIdx)
		return nil
	default:
		return &CompileError{Message: "invalid assignment target", Pos: s.Pos}
	}
}

func (c *compiler) compileIf(s *ast.IfStmt) error {
	if err := c.compileExpr(s.Cond); err != nil {
		return err
	}
	jumpIfFalse := c.emit(OpJumpIfFalse, 0)
	if err := c.compileBlock(s.Then); err != nil {
		return err
	}

	if s.Else == nil {
		c.patchOperand(jumpIfFalse, int32(len(c.code)))
		return nil
	}

	jumpEnd := c.emit(OpJump, 0)
	c.patchOperand(jumpIfFalse, int32(len(c.code)))
	if err := c.compileStmt(s.Else); err != nil {
		return err
	}
	c.patchOperand(jumpEnd, int32(len(c.code)))
	return nil
}

func (c *compiler) compileWhile(s *ast.WhileStmt) error {
	loop := &loopPatch{}
	c.loops = append(c.loops, loop)

	condStart := len(c.code)
	if err := c.compileExpr(s.Cond); err != nil {
		return err
	}
	jumpEnd := c.emit(OpJumpIfFalse, 0)
	if err := c.compileBlock(s.Body); err != nil {
		return err
	}
	c.emit(OpJump, int32(condStart))

	end := len(c.code)
	c.patchOperand(jumpEnd, int32(end))
	for _, b := range loop.breaks {
		c.patchOperand(b, int32(end))
	}
	for _, cont := range loop.continues {
		c.patchOperand(cont, int32(condStart))
	}
	c.loops = c.loops[:len(c.loops)-1]
	return nil
}

func (c *compiler) compileFor(s *ast.ForStmt) error {
	if err := c.compileExpr(s.Iterable); err != nil {
		return err
	}
	c.emit(OpIterNew)

	loop := &loopPatch{}
	c.loops = append(c.loops, loop)

	loopStart := len(c.code)
	c.emit(OpIterNext)
	jumpEnd := c.emit(OpJumpIfFalse, 0)

	sym := c.internSymbol(s.Name, SymbolUser)
	c.emit(OpStoreNew, int32(sym))

	if err := c.compileBlock(s.Body); err != nil {
		return err
	}
	c.emit(OpJump, int32(loopStart))

	end := len(c.code)
	c.patchOperand(jumpEnd, int32(end))
	c.emit(OpIterDrop)

	for _, b := range loop.breaks {
		c.patchOperand(b, int32(end))
	}
	for _, cont := range loop.continues {
		c.patchOperand(cont, int32(loopStart))
	}
	c.loops = c.loops[:len(c.loops)-1]
	return nil
}

// compileFunctionDecl lowers a function by jumping over its body at
// declaration time and recording the body's entry offset as the operand of
// MAKE_CLOSURE, so the same code stream holds both top-level and nested
// code without a separate function table section.
func (c *compiler) compileFunctionDecl(s *ast.FunctionDecl) error {
	jumpOverBody := c.emit(OpJump, 0)
	entry := len(c.code)

	for _, p := range s.Params {
		sym := c.internSymbol(p.Name, SymbolUser)
		if p.Default != nil {
			c.emit(OpJumpIfFalse, 0) // placeholder: VM-side arg-presence check is host-defined
		}
		c.emit(OpStoreNew, int32(sym))
	}
	if err := c.compileBlock(s.Body); err != nil {
		return err
	}
	c.emit(OpLoadConst, c.internConst(Const{Tag: ConstNull}))
	c.emit(OpReturn)

	c.patchOperand(jumpOverBody, int32(len(c.code)))

	c.emit(OpMakeClosure, int32(entry))
	sym := c.internSymbol(s.Name, SymbolUser)
	c.emit(OpStoreNew, int32(sym))
	return nil
}

func (c *compiler) compileSay(s *ast.SayStmt) error {
	if err := c.compileExpr(s.Text); err != nil {
		return err
	}
	argc := int32(1)
	if s.Emotion != nil {
		if err := c.compileExpr(s.Emotion); err != nil {
			return err
		}
		argc++
	}
	if s.VoiceID != nil {
		if err := c.compileExpr(s.VoiceID); err != nil {
			return err
		}
		argc++
	}
	if s.Speed != nil {
		if err := c.compileExpr(s.Speed); err != nil {
			return err
		}
		argc++
	}
	sym := c.internSymbol("say", SymbolIntrinsic)
	c.emit(OpLoadSym, int32(sym))
	c.emit(OpCallIntrinsic, argc)
	c.emit(OpPop)
	return nil
}

func (c *compiler) compileOptimizeSelf(s *ast.OptimizeSelfStmt) error {
	if err := c.compileExpr(s.Metric); err != nil {
		return err
	}
	if err := c.compileExpr(s.Target); err != nil {
		return err
	}
	argc := int32(2)
	if s.Strategy != nil {
		if err := c.compileExpr(s.Strategy); err != nil {
			return err
		}
		argc++
	}
	sym := c.internSymbol("optimize_self", SymbolIntrinsic)
	c.emit(OpLoadSym, int32(sym))
	c.emit(OpCallIntrinsic, argc)
	c.emit(OpPop)
	return nil
}

func (c *compiler) compileExpr(expr ast.ExprNode) error {
	switch e := expr.(type) {
	case *ast.IntLit:
		c.emit(OpLoadConst, c.internConst(Const{Tag: ConstInt, I: e.Value}))
	case *ast.FloatLit:
		c.emit(OpLoadConst, c.internConst(Const{Tag: ConstFloat, F: e.Value}))
	case *ast.StringLit:
		c.emit(OpLoadConst, c.internConst(Const{Tag: ConstString, S: e.Value}))
	case *ast.BoolLit:
		v := int64(0)
		if e.Value {
			v = 1
		}
		c.emit(OpLoadConst, c.internConst(Const{Tag: ConstInt, I: v}))
	case *ast.NullLit:
		c.emit(OpLoadConst, c.internConst(Const{Tag: ConstNull}))
	case *ast.Ident:
		sym := c.internSymbol(e.Name, SymbolUser)
		c.emit(OpLoadSym, int32(sym))
	case *ast.Array:
		for _, el := range e.Elements {
			if err := c.compileExpr(el); err != nil {
				return err
			}
		}
		c.emit(OpMakeArray, int32(len(e.Elements)))
	case *ast.MappingLit:
		for _, pair := range e.Pairs {
			if err := c.compileMappingKey(pair.Key); err != nil {
				return err
			}
			if err := c.compileExpr(pair.Value); err != nil {
				return err
			}
		}
		c.emit(OpMakeMapping, int32(len(e.Pairs)))
	case *ast.Index:
		if err := c.compileExpr(e.Target); err != nil {
			return err
		}
		if err := c.compileExpr(e.Index); err != nil {
			return err
		}
		c.emit(OpGetIndex)
	case *ast.Member:
		if err := c.compileExpr(e.Target); err != nil {
			return err
		}
		nameIdx := c.internConst(Const{Tag: ConstString, S: e.Name})
		c.emit(OpGetMember, nameIdx)
	case *ast.Binary:
		return c.compileBinary(e)
	case *ast.Unary:
		if err := c.compileExpr(e.Operand); err != nil {
			return err
		}
		switch e.Op {
		case "-":
			c.emit(OpNeg)
		case "!":
			c.emit(OpNot)
		default:
			return &CompileError{Message: "unsupported unary operator '" + e.Op + "'", Pos: e.Pos}
		}
	case *ast.Call:
		return c.compileCall(e)
	case *ast.Range:
		// Ranges are lowered as a pair on the stack; ITER_NEW recognises the
		// two-value shape and produces a lazy integer iterator.
		if err := c.compileExpr(e.Start); err != nil {
			return err
		}
		if err := c.compileExpr(e.End); err != nil {
			return err
		}
	case *ast.KnowledgeQuery:
		if err := c.compileExpr(e.Query); err != nil {
			return err
		}
		argc := int32(1)
		if e.Filters != nil {
			if err := c.compileExpr(e.Filters); err != nil {
				return err
			}
			argc++
		}
		sym := c.internSymbol("knowledge", SymbolIntrinsic)
		c.emit(OpLoadSym, int32(sym))
		c.emit(OpCallIntrinsic, argc)
	case *ast.ListenExpr:
		argc := int32(0)
		if e.Timeout != nil {
			if err := c.compileExpr(e.Timeout); err != nil {
				return err
			}
			argc++
		}
		if e.Language != nil {
			if err := c.compileExpr(e.Language); err != nil {
				return err
			}
			argc++
		}
		sym := c.internSymbol("listen", SymbolIntrinsic)
		c.emit(OpLoadSym, int32(sym))
		c.emit(OpCallIntrinsic, argc)
	default:
		return &CompileError{Message: "unsupported expression node", Pos: expr.Location()}
	}
	return nil
}

func (c *compiler) compileMappingKey(key ast.ExprNode) error {
	switch k := key.(type) {
	case *ast.StringLit:
		c.emit(OpLoadConst, c.internConst(Const{Tag: ConstString, S: k.Value}))
		return nil
	case *ast.Ident:
		c.emit(OpLoadConst, c.internConst(Const{Tag: ConstString, S: k.Name}))
		return nil
	default:
		return c.compileExpr(key)
	}
}

func (c *compiler) compileBinary(e *ast.Binary) error {
	if err := c.compileExpr(e.Left); err != nil {
		return err
	}
	if err := c.compileExpr(e.Right); err != nil {
		return err
	}
	switch e.Op {
	case "+":
		c.emit(OpAdd)
	case "-":
		c.emit(OpSub)
	case "*":
		c.emit(OpMul)
	case "/":
		c.emit(OpDiv)
	case "%":
		c.emit(OpMod)
	case "==":
		c.emit(OpEq)
	case "!=":
		c.emit(OpNeq)
	case "<":
		c.emit(OpLt)
	case "<=":
		c.emit(OpLeq)
	case ">":
		c.emit(OpGt)
	case ">=":
		c.emit(OpGeq)
	case "&&":
		c.emit(OpAnd)
	case "||":
		c.emit(OpOr)
	default:
		return &CompileError{Message: "unsupported binary operator '" + e.Op + "'", Pos: e.Pos}
	}
	return nil
}

func (c *compiler) compileCall(e *ast.Call) error {
	callee, ok := e.Callee.(*ast.Ident)
	if ok {
		if idx, known := c.symbolIndex[callee.Name]; known && c.symbols[idx].Kind == SymbolIntrinsic {
			for _, arg := range e.Args {
				if err := c.compileExpr(arg); err != nil {
					return err
				}
			}
			c.emit(OpLoadSym, int32(idx))
			c.emit(OpCallIntrinsic, int32(len(e.Args)))
			return nil
		}
	}

	for _, arg := range e.Args {
		if err := c.compileExpr(arg); err != nil {
			return err
		}
	}
	if err := c.compileExpr(e.Callee); err != nil {
		return err
	}
	if len(e.NamedArgs) == 0 {
		c.emit(OpCall, int32(len(e.Args)))
		return nil
	}
	for _, na := range e.NamedArgs {
		c.emit(OpLoadConst, c.internConst(Const{Tag: ConstString, S: na.Name}))
		if err := c.compileExpr(na.Value); err != nil {
			return err
		}
	}
	c.emit(OpCallNamed, int32(len(e.Args)), int32(len(e.NamedArgs)))
	return nil
}
