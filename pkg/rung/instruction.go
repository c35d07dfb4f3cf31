package rung

import "strings"

// InstructionKind is the visual category of a PLC instruction. The category
// decides which symbol the rendering collaborator draws and which geometry
// the layout engine assigns.
type InstructionKind int

const (
	// InstrContact is an input condition (XIC, XIO).
	InstrContact InstructionKind = iota
	// InstrCoil is an output condition (OTE, OTL, OTU).
	InstrCoil
	// InstrBlock is a function block (timers, counters, math, moves, ...).
	InstrBlock
)

// String returns the lowercase name of the instruction kind.
func (k InstructionKind) String() string {
	switch k {
	case InstrContact:
		return "contact"
	case InstrCoil:
		return "coil"
	case InstrBlock:
		return "block"
	}
	return "unknown"
}

// contactMnemonics and coilMnemonics classify the Logix instruction set.
// Anything not listed renders as a function block.
var (
	contactMnemonics = map[string]bool{"XIC": true, "XIO": true, "ONS": true}
	coilMnemonics    = map[string]bool{"OTE": true, "OTL": true, "OTU": true}
)

// Instruction is an opaque reference to a PLC instruction. The rung sequence
// owns the placement of instructions but not their meaning; operand
// resolution against controller tags happens elsewhere.
type Instruction struct {
	// Mnemonic is the uppercase instruction name, e.g. "XIC" or "TON".
	Mnemonic string
	// Operands are the raw operand strings in declaration order.
	Operands []string
}

// NewInstruction builds an instruction from a mnemonic and operands.
// The mnemonic is normalized to upper case.
func NewInstruction(mnemonic string, operands ...string) Instruction {
	return Instruction{Mnemonic: strings.ToUpper(mnemonic), Operands: operands}
}

// Kind classifies the instruction into contact, coil, or block.
func (i Instruction) Kind() InstructionKind {
	switch {
	case contactMnemonics[i.Mnemonic]:
		return InstrContact
	case coilMnemonics[i.Mnemonic]:
		return InstrCoil
	}
	return InstrBlock
}

// Text returns the neutral text form, e.g. "XIC(Start)".
func (i Instruction) Text() string {
	var sb strings.Builder
	sb.WriteString(i.Mnemonic)
	sb.WriteByte('(')
	sb.WriteString(strings.Join(i.Operands, ","))
	sb.WriteByte(')')
	return sb.String()
}

// Label returns the text displayed next to the drawn symbol: the first
// operand for contacts and coils, the mnemonic for blocks.
func (i Instruction) Label() string {
	if i.Kind() == InstrBlock {
		return i.Mnemonic
	}
	if len(i.Operands) > 0 {
		return i.Operands[0]
	}
	return "?"
}
