package vm

import "fmt"

const (
	TRAP_GETC  word = 0x20 /* get character from keyboard, not echoed onto the terminal */
	TRAP_OUT   word = 0x21 /* output a character */
	TRAP_PUTS  word = 0x22 /* output a word string */
	TRAP_IN    word = 0x23 /* get character from keyboard, echoed onto the terminal */
	TRAP_PUTSP word = 0x24 /* output a byte string */
	TRAP_HALT  word = 0x25 /* halt the program */
)

// trap runs the service routine named by an 8-bit trap vector. R7 already
// holds the return address.
func (cpu *cpu) trap(vector word) error {
	switch vector {
	case TRAP_GETC:
		c, err := cpu.console.ReadKey()
		if err != nil {
			return fmt.Errorf("trap GETC: %w", err)
		}
		cpu.generalPurposeRegisters[R0] = word(c)
		cpu.updateFlags(R0)

	case TRAP_OUT:
		if err := cpu.console.WriteByte(byte(cpu.generalPurposeRegisters[R0])); err != nil {
			return fmt.Errorf("trap OUT: %w", err)
		}
		if err := cpu.console.Flush(); err != nil {
			return fmt.Errorf("trap OUT: %w", err)
		}

	case TRAP_PUTS:
		addr := cpu.generalPurposeRegisters[R0]

		for c := cpu.memory.read(addr); c != 0; {
			if err := cpu.console.WriteByte(byte(c)); err != nil {
				return fmt.Errorf("trap PUTS: %w", err)
			}
			addr++
			c = cpu.memory.read(addr)
		}
		if err := cpu.console.Flush(); err != nil {
			return fmt.Errorf("trap PUTS: %w", err)
		}

	case TRAP_IN:
		if err := cpu.print("Enter a character: "); err != nil {
			return fmt.Errorf("trap IN: %w", err)
		}

		c, err := cpu.console.ReadKey()
		if err != nil {
			return fmt.Errorf("trap IN: %w", err)
		}

		if err := cpu.console.WriteByte(c); err != nil {
			return fmt.Errorf("trap IN: %w", err)
		}
		if err := cpu.console.Flush(); err != nil {
			return fmt.Errorf("trap IN: %w", err)
		}

		cpu.generalPurposeRegisters[R0] = word(c)
		cpu.updateFlags(R0)

	case TRAP_PUTSP:
		addr := cpu.generalPurposeRegisters[R0]

		// two packed characters per word, low byte first; a zero high
		// byte is skipped and a zero word ends the string
		for w := cpu.memory.read(addr); w != 0; {
			if err := cpu.console.WriteByte(byte(w)); err != nil {
				return fmt.Errorf("trap PUTSP: %w", err)
			}
			if w>>8 != 0 {
				if err := cpu.console.WriteByte(byte(w >> 8)); err != nil {
					return fmt.Errorf("trap PUTSP: %w", err)
				}
			}
			addr++
			w = cpu.memory.read(addr)
		}
		if err := cpu.console.Flush(); err != nil {
			return fmt.Errorf("trap PUTSP: %w", err)
		}

	case TRAP_HALT:
		if err := cpu.print("HALT\n"); err != nil {
			return fmt.Errorf("trap HALT: %w", err)
		}
		cpu.stop()

	default:
		return fmt.Errorf("unknown trap vector 0x%02x at 0x%04x", vector, cpu.internalRegisters.pc-1)
	}

	return nil
}

func (cpu *cpu) print(s string) error {
	for i := 0; i < len(s); i++ {
		if err := cpu.console.WriteByte(s[i]); err != nil {
			return err
		}
	}
	return cpu.console.Flush()
}
