package spi

// ChipSelect reports whether chip-select n is asserted. The physical line
// is driven low while asserted.
func (ctl *Controller) ChipSelect(n int) (asserted bool) {
	switch n {
	case 0:
		asserted = ctl.cs0En && ctl.cs0Act
	case 1:
		asserted = ctl.cs1En && ctl.cs1Act
	}
	return
}

// Interrupt reports the live level of the interrupt output.
func (ctl *Controller) Interrupt() (irq bool) {
	if (ctl.cr2&CR2_TXEIE) != 0 && (ctl.sr&SR_TXE) != 0 {
		irq = true
	}
	if (ctl.cr2&CR2_RXNEIE) != 0 && (ctl.sr&SR_RXNE) != 0 {
		irq = true
	}
	if (ctl.cr2&CR2_ERRIE) != 0 && (ctl.sr&SR_ERROR_MASK) != 0 {
		irq = true
	}
	return
}

func (ctl *Controller) updateChipSelect() {
	ctl.lines[LINE_CS0].SetLevel(!ctl.ChipSelect(0))
	ctl.lines[LINE_CS1].SetLevel(!ctl.ChipSelect(1))
}

func (ctl *Controller) updateInterrupt() {
	ctl.lines[LINE_IRQ].SetLevel(ctl.Interrupt())
}
