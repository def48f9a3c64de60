package cpu

import (
	"errors"
	"fmt"
	"log"
	"time"
)

// Status is the execution status of the CPU.
type Status int

//go:generate go tool stringer -linecomment -type=Status
const (
	STATUS_IDLE    = Status(0) // idle
	STATUS_RUNNING = Status(1) // running
	STATUS_EXITING = Status(2) // exiting
	STATUS_HALTED  = Status(3) // halted
)

// Cpu is the simulation context for the virtual CPU.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Frequency     uint          // Target instructions per second.
	CycleDuration time.Duration // Minimum duration of an instruction cycle.

	Program  *Program     // Instruction memory and function table.
	Ip       int          // Current instruction pointer.
	Register RegisterFile // Register bank.
	Stack    Stack        // Call stack.
	Status   Status       // Execution status.

	Ticks int // Executed instruction counter.

	// Trace, if set, is called after each instruction is dispatched,
	// before the instruction pointer advances.
	Trace func(ip int, result uint16)
}

// NewCpu creates a new CPU paced to a frequency.
func NewCpu(frequency uint) (cpu *Cpu, err error) {
	cpu = &Cpu{
		Program: &Program{},
	}

	err = cpu.SetFrequency(frequency)
	if err != nil {
		cpu = nil
		return
	}

	return
}

// SetFrequency updates the target frequency and the cycle duration.
func (cpu *Cpu) SetFrequency(frequency uint) (err error) {
	if frequency == 0 {
		err = ErrFrequencyInvalid
		return
	}

	cpu.Frequency = frequency
	cpu.CycleDuration = time.Duration(1000/frequency) * time.Millisecond

	return
}

// Load appends instructions to the program.
func (cpu *Cpu) Load(codes ...Code) (err error) {
	if cpu.Status != STATUS_IDLE {
		err = ErrConsumed
		return
	}

	return cpu.Program.Load(codes...)
}

// LoadProgram appends an assembled program.
func (cpu *Cpu) LoadProgram(prog *Program) (err error) {
	if cpu.Status != STATUS_IDLE {
		err = ErrConsumed
		return
	}

	return cpu.Program.Append(prog)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{
		"ip",
		"status",
		"a", "b", "c", "d", "res",
		"depth",
		"locals",
	}
	for _, reg := range regs {
		var strval string
		switch reg {
		case "ip":
			strval = fmt.Sprintf("%04x", cpu.Ip)
		case "status":
			strval = cpu.Status.String()
		case "a", "b", "c", "d", "res":
			r, _ := ParseRegister(reg)
			strval = fmt.Sprintf("%04x", cpu.Register[r])
		case "depth":
			strval = fmt.Sprintf("%d", len(cpu.Stack.Frames))
		case "locals":
			frame, ok := cpu.Stack.Peek()
			if ok {
				strval = fmt.Sprintf("%04x", frame.Locals)
			} else {
				strval = "----"
			}
		}
		text += fmt.Sprintf("% 6s: %v\n", reg, strval)
	}

	return
}

// Boot prepares the CPU to run the program from main.
//   - Clears all registers.
//   - Clears the call stack.
//   - Clears the instruction counter.
//
// The CPU may only be booted once, whether or not booting succeeds.
func (cpu *Cpu) Boot() (err error) {
	if cpu.Status != STATUS_IDLE {
		err = ErrConsumed
		return
	}

	cpu.Status = STATUS_HALTED
	cpu.Register.Reset()
	cpu.Stack.Reset()
	cpu.Ticks = 0

	if _, ok := cpu.Program.Function("main"); !ok {
		err = ErrMainMissing
		return
	}

	cpu.Ip = cpu.Program.boot()
	cpu.Status = STATUS_RUNNING

	if cpu.Verbose {
		log.Printf("cpu: boot at %03x", cpu.Ip)
	}

	return
}

// FetchCode fetches the instruction at the instruction pointer.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	switch cpu.Status {
	case STATUS_RUNNING:
		// pass
	case STATUS_EXITING:
		err = ErrIpExit
		return
	default:
		err = ErrIpEmpty
		return
	}

	pcode, ok := cpu.Program.Code(cpu.Ip)
	if !ok {
		err = ErrIpEmpty
		return
	}

	code = *pcode
	return
}

// Tick executes a single CPU instruction cycle.
func (cpu *Cpu) Tick() (err error) {
	code, err := cpu.FetchCode()
	if err != nil {
		if !errors.Is(err, ErrIpExit) {
			cpu.Status = STATUS_HALTED
		}
		return
	}

	err = cpu.Execute(code)
	if err != nil {
		cpu.Status = STATUS_HALTED
		return
	}

	if cpu.Trace != nil {
		cpu.Trace(cpu.Ip, cpu.Register[REG_RES])
	}

	cpu.Ip += 1
	cpu.Ticks += 1

	return
}

// Execute executes a single decoded instruction.
//
// The instruction pointer is updated by jumps, calls and returns, but is
// not advanced past the instruction; that is the job of Tick.
func (cpu *Cpu) Execute(code Code) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(code), err)
		}
	}()
	if cpu.Verbose {
		log.Printf("%03x: %v", cpu.Ip, code)
	}

	next_ip := cpu.Ip
	status := cpu.Status

	// Descend into the taken branch of nested conditionals.
	for code.Op == OP_IF {
		var cond uint16
		cond, err = cpu.getValue(code.Arg[0])
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
		branch := code.Else
		if cond >= 1 {
			branch = code.Then
		}
		if branch == nil {
			err = ErrOpcodeBranch
			return
		}
		code = *branch
	}

	switch code.Op {
	case OP_ADD, OP_SUB, OP_EQ:
		var a, b uint16
		a, err = cpu.getValue(code.Arg[0])
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
		b, err = cpu.getValue(code.Arg[1])
		if err != nil {
			err = errors.Join(ErrOpcodeArg2, err)
			return
		}
		cpu.Register[REG_RES] = doAlu(code.Op, a, b)
	case OP_MOV:
		var value uint16
		value, err = cpu.getValue(code.Arg[0])
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
		err = cpu.setValue(code.Arg[1], value)
		if err != nil {
			err = errors.Join(ErrOpcodeArg2, err)
			return
		}
	case OP_FUNC:
		// Only used by the function table.
	case OP_RETURN:
		frame, ok := cpu.Stack.Pop()
		if !ok {
			err = ErrStackEmpty
			return
		}
		next_ip = int(frame.ReturnAddress)
	case OP_CALL:
		entry, ok := cpu.Program.Function(code.Name)
		if !ok {
			err = ErrUnknownFunction(code.Name)
			return
		}
		if cpu.Stack.Full() {
			err = ErrStackFull
			return
		}
		cpu.Stack.Push(uint16(cpu.Ip))
		next_ip = int(entry)
	case OP_GOTO:
		next_ip = int(code.Address)
	case OP_EXIT:
		status = STATUS_EXITING
	default:
		err = ErrOpcodeInvalid
		return
	}

	cpu.Ip = next_ip
	cpu.Status = status

	return
}

// getValue gets the value specified by an argument.
// Reading a slot grows the active frame to include it.
func (cpu *Cpu) getValue(arg CodeArg) (value uint16, err error) {
	switch arg.Mode {
	case ARG_SLOT:
		value, err = cpu.Stack.ReadSlot(arg.Value)
	case ARG_REG:
		value, err = cpu.Register.Get(arg.Register())
	case ARG_LIT:
		value = arg.Value
	default:
		err = ErrOpcodeArgMode
	}

	return
}

// setValue stores a value to the target of an argument.
func (cpu *Cpu) setValue(arg CodeArg, value uint16) (err error) {
	switch arg.Mode {
	case ARG_SLOT:
		err = cpu.Stack.WriteSlot(arg.Value, value)
	case ARG_REG:
		err = cpu.Register.Set(arg.Register(), value)
	case ARG_LIT:
		err = ErrMovDestination
	default:
		err = ErrOpcodeArgMode
	}

	return
}

// doAlu returns the result of an arithmetic or comparison operation.
// Arithmetic wraps modulo 2^16.
func doAlu(op CodeOp, a, b uint16) (output uint16) {
	switch op {
	case OP_ADD:
		output = a + b
	case OP_SUB:
		output = a - b
	case OP_EQ:
		if a == b {
			output = 1
		}
	}

	return
}
