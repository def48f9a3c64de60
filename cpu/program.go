package cpu

import (
	"strings"
)

// PROGRAM_LIMIT is the maximum number of loaded instructions. One more
// address is reserved for the boot call into main.
const PROGRAM_LIMIT = 0xffff

// Link is a jump instruction whose address was resolved from a label.
type Link struct {
	Code  *Code
	Label string
}

// Opcode represents a line of assembled code with its source location and generated instruction.
type Opcode struct {
	LineNo int
	Ip     int
	Words  []string
	Code   *Code
	Links  []Link
}

// Program is the instruction memory of the CPU, and the table of
// function entry points found in it.
type Program struct {
	Opcodes   []Opcode          // Assembler listing, if any.
	Codes     []*Code           // Loaded instructions.
	Functions map[string]uint16 // Function name to its OP_FUNC address.

	scanned int // Number of Codes scanned for OP_FUNC.
}

type Debug struct {
	*Opcode
}

// Debug returns the assembler listing entry for an address, if known.
func (prog *Program) Debug(ip int) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if ip == op.Ip {
			dbg = Debug{Opcode: &prog.Opcodes[n]}
			break
		}
	}

	return
}

// Len returns the number of loaded instructions.
func (prog *Program) Len() int {
	return len(prog.Codes)
}

// Code returns the instruction at an address.
func (prog *Program) Code(ip int) (code *Code, ok bool) {
	if ip < 0 || ip >= len(prog.Codes) {
		return
	}

	return prog.Codes[ip], true
}

// Function returns the address of a function's OP_FUNC marker.
func (prog *Program) Function(name string) (ip uint16, ok bool) {
	ip, ok = prog.Functions[name]
	return
}

// Load appends instructions and registers any function markers in them.
func (prog *Program) Load(codes ...Code) (err error) {
	if len(prog.Codes)+len(codes) > PROGRAM_LIMIT {
		err = ErrProgramFull
		return
	}

	for _, code := range codes {
		prog.Codes = append(prog.Codes, &code)
	}
	prog.scan()

	return
}

// Append appends an assembled program. Label resolved jumps in other are
// relocated to their new addresses; other must not be used afterwards.
//
// A jump to a label that lands at address 0 cannot be encoded, and fails
// with ErrLabelFirst.
func (prog *Program) Append(other *Program) (err error) {
	offset := len(prog.Codes)
	if offset+len(other.Codes) > PROGRAM_LIMIT {
		err = ErrProgramFull
		return
	}

	if offset == 0 {
		for _, op := range other.Opcodes {
			for _, link := range op.Links {
				if link.Code.Address == 0xffff {
					err = &ErrSyntax{
						LineNo: op.LineNo,
						Line:   strings.Join(op.Words, " "),
						Err:    ErrLabelFirst,
					}
					return
				}
			}
		}
	}

	for _, op := range other.Opcodes {
		for _, link := range op.Links {
			link.Code.Address += uint16(offset)
		}
		op.Ip += offset
		prog.Opcodes = append(prog.Opcodes, op)
	}

	prog.Codes = append(prog.Codes, other.Codes...)
	prog.scan()

	return
}

// boot appends the call into main, which may use the reserved address.
func (prog *Program) boot() (ip int) {
	code := MakeCodeCall("main")
	prog.Codes = append(prog.Codes, &code)
	prog.scanned = len(prog.Codes)

	return len(prog.Codes) - 1
}

// scan registers the function markers of the not yet scanned instructions.
func (prog *Program) scan() {
	if prog.Functions == nil {
		prog.Functions = make(map[string]uint16)
	}

	for ip := prog.scanned; ip < len(prog.Codes); ip++ {
		code := prog.Codes[ip]
		if code.Op == OP_FUNC {
			prog.Functions[code.Name] = uint16(ip)
		}
	}
	prog.scanned = len(prog.Codes)
}
