package cpu

// Register is a register file slot.
type Register int

//go:generate go tool stringer -linecomment -type=Register
const (
	REG_A   = Register(0) // a
	REG_B   = Register(1) // b
	REG_C   = Register(2) // c
	REG_D   = Register(3) // d
	REG_RES = Register(4) // res
)

// REG_COUNT is the size of the register file.
const REG_COUNT = 5

// regMap maps assembler register names.
var regMap = map[string]Register{
	"a":   REG_A,
	"b":   REG_B,
	"c":   REG_C,
	"d":   REG_D,
	"res": REG_RES,
}

// ParseRegister returns the register for an assembler register name.
func ParseRegister(name string) (reg Register, err error) {
	reg, ok := regMap[name]
	if !ok {
		err = ErrUnknownRegister(name)
	}
	return
}

// Valid returns true if the register is part of the register file.
func (reg Register) Valid() bool {
	return reg >= REG_A && reg < REG_COUNT
}

// RegisterFile holds the four general-purpose registers and the result register.
type RegisterFile [REG_COUNT]uint16

// Get the value of a register.
func (rf *RegisterFile) Get(reg Register) (value uint16, err error) {
	if !reg.Valid() {
		err = ErrUnknownRegister(reg.String())
		return
	}

	value = rf[reg]
	return
}

// Set the value of a register.
func (rf *RegisterFile) Set(reg Register, value uint16) (err error) {
	if !reg.Valid() {
		err = ErrUnknownRegister(reg.String())
		return
	}

	rf[reg] = value
	return
}

// Reset zeros all registers.
func (rf *RegisterFile) Reset() {
	clear(rf[:])
}
