package cpu

import (
	"fmt"
	"strings"
)

// CodeOp is the operation of an instruction.
type CodeOp int

//go:generate go tool stringer -linecomment -type=CodeOp
const (
	OP_ADD    = CodeOp(0) // add
	OP_SUB    = CodeOp(1) // sub
	OP_MOV    = CodeOp(2) // mov
	OP_EQ     = CodeOp(3) // eq
	OP_FUNC   = CodeOp(4) // func
	OP_RETURN = CodeOp(5) // return
	OP_CALL   = CodeOp(6) // call
	OP_GOTO   = CodeOp(7) // goto
	OP_IF     = CodeOp(8) // if
	OP_EXIT   = CodeOp(9) // exit
)

// CodeArgMode selects where an instruction argument's value lives.
type CodeArgMode int

//go:generate go tool stringer -linecomment -type=CodeArgMode
const (
	ARG_SLOT = CodeArgMode(0) // slot
	ARG_REG  = CodeArgMode(1) // reg
	ARG_LIT  = CodeArgMode(2) // lit
)

// CodeArg is an instruction argument: a local slot of the active frame,
// a register, or a literal value.
type CodeArg struct {
	Mode  CodeArgMode
	Value uint16 // Slot index, Register, or literal.
}

// ArgSlot makes an argument referencing a local slot of the active frame.
func ArgSlot(index uint16) CodeArg {
	return CodeArg{Mode: ARG_SLOT, Value: index}
}

// ArgReg makes an argument referencing a register.
func ArgReg(reg Register) CodeArg {
	return CodeArg{Mode: ARG_REG, Value: uint16(reg)}
}

// ArgLit makes a literal argument.
func ArgLit(value uint16) CodeArg {
	return CodeArg{Mode: ARG_LIT, Value: value}
}

// Register returns the register of an ARG_REG argument.
func (arg CodeArg) Register() Register {
	return Register(arg.Value)
}

// String returns the assembly language representation of the argument.
func (arg CodeArg) String() string {
	switch arg.Mode {
	case ARG_SLOT:
		return fmt.Sprintf("[%d]", arg.Value)
	case ARG_REG:
		return arg.Register().String()
	case ARG_LIT:
		return fmt.Sprintf("%d", arg.Value)
	}

	return fmt.Sprintf("%v(%d)", arg.Mode, arg.Value)
}

// Code is a single instruction.
//
// The fields used depend on Op:
//   - OP_ADD, OP_SUB, OP_EQ: Arg[0], Arg[1]
//   - OP_MOV: Arg[0] is the source, Arg[1] the destination
//   - OP_FUNC, OP_CALL: Name
//   - OP_GOTO: Address
//   - OP_IF: Arg[0] is the condition, Then and Else the branches
type Code struct {
	Op      CodeOp
	Arg     [2]CodeArg
	Name    string
	Address uint16
	Then    *Code
	Else    *Code
}

// MakeCodeAdd creates an instruction setting res to a + b.
func MakeCodeAdd(a, b CodeArg) Code {
	return Code{Op: OP_ADD, Arg: [2]CodeArg{a, b}}
}

// MakeCodeSub creates an instruction setting res to a - b.
func MakeCodeSub(a, b CodeArg) Code {
	return Code{Op: OP_SUB, Arg: [2]CodeArg{a, b}}
}

// MakeCodeMov creates an instruction copying src into dst.
func MakeCodeMov(src, dst CodeArg) Code {
	return Code{Op: OP_MOV, Arg: [2]CodeArg{src, dst}}
}

// MakeCodeEq creates an instruction setting res to 1 if a == b, else 0.
func MakeCodeEq(a, b CodeArg) Code {
	return Code{Op: OP_EQ, Arg: [2]CodeArg{a, b}}
}

// MakeCodeFunc creates a function entry marker.
func MakeCodeFunc(name string) Code {
	return Code{Op: OP_FUNC, Name: name}
}

// MakeCodeReturn creates a return from the active frame.
func MakeCodeReturn() Code {
	return Code{Op: OP_RETURN}
}

// MakeCodeCall creates a call to a named function.
func MakeCodeCall(name string) Code {
	return Code{Op: OP_CALL, Name: name}
}

// MakeCodeGoto creates a jump to an absolute address.
func MakeCodeGoto(address uint16) Code {
	return Code{Op: OP_GOTO, Address: address}
}

// MakeCodeIf creates a conditional. Exactly one of then_code or else_code
// is executed, depending on whether cond is non-zero.
func MakeCodeIf(cond CodeArg, then_code, else_code Code) Code {
	return Code{
		Op:   OP_IF,
		Arg:  [2]CodeArg{cond, {}},
		Then: &then_code,
		Else: &else_code,
	}
}

// MakeCodeExit creates an instruction that stops execution.
func MakeCodeExit() Code {
	return Code{Op: OP_EXIT}
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	var sb strings.Builder
	code.format(&sb)
	return sb.String()
}

func (code Code) format(sb *strings.Builder) {
	switch code.Op {
	case OP_ADD, OP_SUB, OP_MOV, OP_EQ:
		fmt.Fprintf(sb, "%v %v %v", code.Op, code.Arg[0], code.Arg[1])
	case OP_FUNC, OP_CALL:
		fmt.Fprintf(sb, "%v %v", code.Op, code.Name)
	case OP_GOTO:
		fmt.Fprintf(sb, "%v %d", code.Op, code.Address)
	case OP_RETURN, OP_EXIT:
		sb.WriteString(code.Op.String())
	case OP_IF:
		fmt.Fprintf(sb, "%v %v then ", code.Op, code.Arg[0])
		if code.Then != nil {
			code.Then.format(sb)
		}
		sb.WriteString(" else ")
		if code.Else != nil {
			code.Else.format(sb)
		}
	default:
		sb.WriteString(code.Op.String())
	}
}
