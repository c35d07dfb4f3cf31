package rung

import (
	"strings"
	"unicode"

	liberrors "github.com/ladderworks/ladderkit/pkg/errors"
)

// ParseText builds a rung from neutral rung text, e.g.
//
//	XIC(Start)[XIO(Stop),OTE(Motor)]
//
// Square brackets open and close branch groups, top-level commas separate
// sibling rails, and commas inside instruction parentheses separate
// operands. Whitespace between tokens is ignored. The parsed sequence is
// reindexed, so structural problems (unbalanced markers) are reported as
// UNBALANCED_BRANCH and malformed tokens as INVALID_RUNG_TEXT.
func ParseText(text string) (*Rung, error) {
	seq, err := scan(text)
	if err != nil {
		return nil, err
	}
	r := New()
	if err := r.commit(seq); err != nil {
		return nil, err
	}
	return r, nil
}

// Text reconstructs the neutral text form of the sequence. ParseText(r.Text())
// yields an equivalent rung.
func (r *Rung) Text() string {
	var sb strings.Builder
	for _, e := range r.seq {
		switch e.Kind {
		case KindInstruction:
			sb.WriteString(e.Instruction.Text())
		case KindBranchStart:
			sb.WriteByte('[')
		case KindBranchNext:
			sb.WriteByte(',')
		case KindBranchEnd:
			sb.WriteByte(']')
		}
	}
	return sb.String()
}

// scan tokenizes rung text into an unindexed element sequence.
func scan(text string) ([]Element, error) {
	var seq []Element
	runes := []rune(text)
	i := 0

	for i < len(runes) {
		c := runes[i]
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '[':
			seq = append(seq, Element{Kind: KindBranchStart})
			i++
		case c == ',':
			seq = append(seq, Element{Kind: KindBranchNext})
			i++
		case c == ']':
			seq = append(seq, Element{Kind: KindBranchEnd})
			i++
		case c == ';' && i == len(runes)-1:
			// Trailing rung terminator from exported routine text.
			i++
		case isMnemonicRune(c):
			ins, n, err := scanInstruction(runes[i:])
			if err != nil {
				return nil, err
			}
			seq = append(seq, Element{Kind: KindInstruction, Instruction: &ins})
			i += n
		default:
			return nil, liberrors.New(liberrors.ErrCodeInvalidRung,
				"unexpected character %q at offset %d", c, i)
		}
	}
	return seq, nil
}

// scanInstruction consumes one MNEMONIC(op1,op2,...) token and returns the
// instruction plus the number of runes consumed. Operand parentheses may
// nest (indirect addressing), so the closing paren is matched by depth.
func scanInstruction(runes []rune) (Instruction, int, error) {
	i := 0
	for i < len(runes) && isMnemonicRune(runes[i]) {
		i++
	}
	if i == len(runes) || runes[i] != '(' {
		return Instruction{}, 0, liberrors.New(liberrors.ErrCodeInvalidRung,
			"instruction %q has no operand list", string(runes[:i]))
	}
	mnemonic := string(runes[:i])

	depth := 0
	var operands []string
	var cur strings.Builder
	for j := i; j < len(runes); j++ {
		c := runes[j]
		switch c {
		case '(':
			depth++
			if depth > 1 {
				cur.WriteRune(c)
			}
		case ')':
			depth--
			if depth == 0 {
				op := strings.TrimSpace(cur.String())
				if op != "" || len(operands) > 0 {
					operands = append(operands, op)
				}
				return NewInstruction(mnemonic, operands...), j + 1, nil
			}
			cur.WriteRune(c)
		case ',':
			if depth == 1 {
				operands = append(operands, strings.TrimSpace(cur.String()))
				cur.Reset()
			} else {
				cur.WriteRune(c)
			}
		default:
			cur.WriteRune(c)
		}
	}
	return Instruction{}, 0, liberrors.New(liberrors.ErrCodeInvalidRung,
		"unterminated operand list for %q", mnemonic)
}

func isMnemonicRune(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_'
}
