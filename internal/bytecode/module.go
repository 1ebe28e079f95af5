package bytecode

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"

	nxerrors "github.com/nexuslang/nexus/internal/errors"
)

// Magic identifies the .nxb wire format (spec.md §6).
var Magic = [4]byte{'N', 'X', 'B', '2'}

// Version is the compiler's current module format version. A reader that
// sees a higher major version must fail closed.
var Version = ModuleVersion{Major: 1, Minor: 1, Patch: 1}

// ModuleVersion is the three-byte version tuple stored in the header.
type ModuleVersion struct {
	Major, Minor, Patch byte
}

// ConstTag identifies one constant pool entry's payload shape.
type ConstTag byte

const (
	ConstInt    ConstTag = 1
	ConstFloat  ConstTag = 2
	ConstString ConstTag = 3
	ConstNull   ConstTag = 4
)

// Const is one constant pool entry.
type Const struct {
	Tag ConstTag
	I   int64
	F   float64
	S   string
}

// SymbolKind distinguishes a user-declared binding from an intrinsic.
type SymbolKind uint32

const (
	SymbolUser      SymbolKind = 0
	SymbolIntrinsic SymbolKind = 1
)

// Symbol is one symbol table entry.
type Symbol struct {
	ID   uint32
	Kind SymbolKind
	Name string
}

// DebugEntry maps one code offset back to a source position.
type DebugEntry struct {
	Offset uint32
	Line   uint32
	Col    uint32
}

// Metadata is the optional JSON trailer: producer-defined keys, with
// source_path/source_hash/compiler_version/signature documented by
// spec.md §6 and this repo's SPEC_FULL.md §11.
type Metadata map[string]string

// Module is a fully decoded .nxb module.
type Module struct {
	Version  ModuleVersion
	Code     []byte
	Consts   []Const
	Symbols  []Symbol
	Debug    []DebugEntry // nil if the module carries no debug info
	Metadata Metadata     // nil if the module carries no metadata trailer
}

// ModuleVersionError is raised by Decode for a module that is truncated, has
// a bad magic number, or was built with a higher major version than it
// understands. Decode does not scan the code section, so an unknown opcode
// is not reported.
type ModuleVersionError struct {
	Message string
}

func (e *ModuleVersionError) Error() string { return e.Message }

func (e *ModuleVersionError) Diagnostic() *nxerrors.Diagnostic {
	return nxerrors.New(nxerrors.KindModuleVersion, e.Message, nxerrors.Position{})
}

// Encode serializes m to the .nxb wire format.
func (m *Module) Encode() ([]byte, error) {
	var data bytes.Buffer
	if err := binary.Write(&data, binary.LittleEndian, uint32(len(m.Consts))); err != nil {
		return nil, err
	}
	for _, c := range m.Consts {
		if err := encodeConst(&data, c); err != nil {
			return nil, err
		}
	}

	var symbols bytes.Buffer
	if err := binary.Write(&symbols, binary.LittleEndian, uint32(len(m.Symbols))); err != nil {
		return nil, err
	}
	for _, s := range m.Symbols {
		binary.Write(&symbols, binary.LittleEndian, s.ID)
		binary.Write(&symbols, binary.LittleEndian, uint32(s.Kind))
		binary.Write(&symbols, binary.LittleEndian, uint32(len(s.Name)))
		symbols.WriteString(s.Name)
	}

	var trailer bytes.Buffer
	hasDebug := len(m.Debug) > 0
	if hasDebug {
		binary.Write(&trailer, binary.LittleEndian, uint32(len(m.Debug)))
		for _, d := range m.Debug {
			binary.Write(&trailer, binary.LittleEndian, d.Offset)
			binary.Write(&trailer, binary.LittleEndian, d.Line)
			binary.Write(&trailer, binary.LittleEndian, d.Col)
		}
	}
	if m.Metadata != nil {
		blob, err := json.Marshal(m.Metadata)
		if err != nil {
			return nil, err
		}
		binary.Write(&trailer, binary.LittleEndian, uint32(len(blob)))
		trailer.Write(blob)
	}

	var out bytes.Buffer
	out.Write(Magic[:])
	out.WriteByte(m.Version.Major)
	out.WriteByte(m.Version.Minor)
	out.WriteByte(m.Version.Patch)
	var flags byte
	if hasDebug {
		flags |= 1
	}
	out.WriteByte(flags)

	var tsBuf [8]byte
	out.Write(tsBuf[:]) // build timestamp: stamped by the caller post-encode if needed

	binary.Write(&out, binary.LittleEndian, uint32(len(m.Code)))
	binary.Write(&out, binary.LittleEndian, uint32(data.Len()))
	binary.Write(&out, binary.LittleEndian, uint32(symbols.Len()))
	binary.Write(&out, binary.LittleEndian, uint32(0)) // reserved

	out.Write(m.Code)
	out.Write(data.Bytes())
	out.Write(symbols.Bytes())
	out.Write(trailer.Bytes())

	return out.Bytes(), nil
}

func encodeConst(w *bytes.Buffer, c Const) error {
	w.WriteByte(byte(c.Tag))
	switch c.Tag {
	case ConstInt:
		return binary.Write(w, binary.LittleEndian, c.I)
	case ConstFloat:
		return binary.Write(w, binary.LittleEndian, c.F)
	case ConstString:
		if err := binary.Write(w, binary.LittleEndian, uint32(len(c.S))); err != nil {
			return err
		}
		_, err := w.WriteString(c.S)
		return err
	case ConstNull:
		return nil
	default:
		return fmt.Errorf("unknown constant tag %d", c.Tag)
	}
}

// Decode parses raw .nxb bytes into a Module, failing closed on a bad magic
// number, an unsupported major version, or a truncated section (spec.md §6).
// It does not scan the code section, so an unknown opcode is not detected.
func Decode(raw []byte) (*Module, error) {
	if len(raw) < 32 {
		return nil, &ModuleVersionError{Message: "module shorter than the 32-byte header"}
	}
	if !bytes.Equal(raw[0:4], Magic[:]) {
		return nil, &ModuleVersionError{Message: "bad magic, not an NXB2 module"}
	}

	version := ModuleVersion{Major: raw[4], Minor: raw[5], Patch: raw[6]}
	if version.Major > Version.Major {
		return nil, &ModuleVersionError{Message: fmt.Sprintf("module major version %d newer than supported %d", version.Major, Version.Major)}
	}
	flags := raw[7]
	hasDebug := flags&1 != 0

	codeLen := binary.LittleEndian.Uint32(raw[16:20])
	dataLen := binary.LittleEndian.Uint32(raw[20:24])
	symLen := binary.LittleEndian.Uint32(raw[24:28])

	pos := 32
	if pos+int(codeLen) > len(raw) {
		return nil, &ModuleVersionError{Message: "truncated code section"}
	}
	code := raw[pos : pos+int(codeLen)]
	pos += int(codeLen)

	if pos+int(dataLen) > len(raw) {
		return nil, &ModuleVersionError{Message: "truncated data section"}
	}
	consts, err := decodeConsts(raw[pos : pos+int(dataLen)])
	if err != nil {
		return nil, err
	}
	pos += int(dataLen)

	if pos+int(symLen) > len(raw) {
		return nil, &ModuleVersionError{Message: "truncated symbol table"}
	}
	symbols, err := decodeSymbols(raw[pos : pos+int(symLen)])
	if err != nil {
		return nil, err
	}
	pos += int(symLen)

	m := &Module{Version: version, Code: code, Consts: consts, Symbols: symbols}

	if hasDebug && pos+4 <= len(raw) {
		count := int(binary.LittleEndian.Uint32(raw[pos : pos+4]))
		pos += 4
		m.Debug = make([]DebugEntry, 0, count)
		for n := 0; n < count && pos+12 <= len(raw); n++ {
			m.Debug = append(m.Debug, DebugEntry{
				Offset: binary.LittleEndian.Uint32(raw[pos : pos+4]),
				Line:   binary.LittleEndian.Uint32(raw[pos+4 : pos+8]),
				Col:    binary.LittleEndian.Uint32(raw[pos+8 : pos+12]),
			})
			pos += 12
		}
	}

	if pos+4 <= len(raw) {
		blobLen := int(binary.LittleEndian.Uint32(raw[pos : pos+4]))
		pos += 4
		if pos+blobLen <= len(raw) {
			var meta Metadata
			if err := json.Unmarshal(raw[pos:pos+blobLen], &meta); err == nil {
				m.Metadata = meta
			}
		}
	}

	return m, nil
}

func decodeConsts(data []byte) ([]Const, error) {
	if len(data) < 4 {
		return nil, &ModuleVersionError{Message: "truncated constant pool count"}
	}
	count := binary.LittleEndian.Uint32(data[0:4])
	pos := 4
	out := make([]Const, 0, count)
	for n := uint32(0); n < count; n++ {
		if pos >= len(data) {
			return nil, &ModuleVersionError{Message: "truncated constant pool entry"}
		}
		tag := ConstTag(data[pos])
		pos++
		switch tag {
		case ConstInt:
			if pos+8 > len(data) {
				return nil, &ModuleVersionError{Message: "truncated int constant"}
			}
			v := int64(binary.LittleEndian.Uint64(data[pos : pos+8]))
			out = append(out, Const{Tag: tag, I: v})
			pos += 8
		case ConstFloat:
			if pos+8 > len(data) {
				return nil, &ModuleVersionError{Message: "truncated float constant"}
			}
			bits := binary.LittleEndian.Uint64(data[pos : pos+8])
			out = append(out, Const{Tag: tag, F: math.Float64frombits(bits)})
			pos += 8
		case ConstString:
			if pos+4 > len(data) {
				return nil, &ModuleVersionError{Message: "truncated string constant length"}
			}
			strLen := int(binary.LittleEndian.Uint32(data[pos : pos+4]))
			pos += 4
			if pos+strLen > len(data) {
				return nil, &ModuleVersionError{Message: "truncated string constant"}
			}
			out = append(out, Const{Tag: tag, S: string(data[pos : pos+strLen])})
			pos += strLen
		case ConstNull:
			out = append(out, Const{Tag: tag})
		default:
			return nil, &ModuleVersionError{Message: fmt.Sprintf("unknown constant tag %d", tag)}
		}
	}
	return out, nil
}

func decodeSymbols(data []byte) ([]Symbol, error) {
	if len(data) < 4 {
		return nil, &ModuleVersionError{Message: "truncated symbol table count"}
	}
	count := binary.LittleEndian.Uint32(data[0:4])
	pos := 4
	out := make([]Symbol, 0, count)
	for n := uint32(0); n < count; n++ {
		if pos+12 > len(data) {
			return nil, &ModuleVersionError{Message: "truncated symbol entry"}
		}
		id := binary.LittleEndian.Uint32(data[pos : pos+4])
		kind := SymbolKind(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		nameLen := int(binary.LittleEndian.Uint32(data[pos+8 : pos+12]))
		pos += 12
		if pos+nameLen > len(data) {
			return nil, &ModuleVersionError{Message: "truncated symbol name"}
		}
		out = append(out, Symbol{ID: id, Kind: kind, Name: string(data[pos : pos+nameLen])})
		pos += nameLen
	}
	return out, nil
}
