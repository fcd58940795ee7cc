package spi

const (
	STATE_VERSION         = 1 // Current snapshot layout.
	STATE_MINIMUM_VERSION = 1 // Oldest snapshot layout that can be restored.
)

// State is a snapshot of every field of the controller.
type State struct {
	Version int `toml:"version"`

	CR1    uint32 `toml:"cr1"`
	CR2    uint32 `toml:"cr2"`
	SR     uint32 `toml:"sr"`
	DR     uint32 `toml:"dr"`
	CSCtrl uint32 `toml:"csctrl"`

	RxData uint8 `toml:"rx_data"`
	SPE    bool  `toml:"spe"`
	MSTR   bool  `toml:"mstr"`
	CS0En  bool  `toml:"cs0_en"`
	CS0Act bool  `toml:"cs0_act"`
	CS1En  bool  `toml:"cs1_en"`
	CS1Act bool  `toml:"cs1_act"`
}

// Save returns a snapshot of the controller.
func (ctl *Controller) Save() State {
	return State{
		Version: STATE_VERSION,
		CR1:     ctl.cr1,
		CR2:     ctl.cr2,
		SR:      ctl.sr,
		DR:      ctl.dr,
		CSCtrl:  ctl.csctrl,
		RxData:  ctl.rxData,
		SPE:     ctl.spe,
		MSTR:    ctl.mstr,
		CS0En:   ctl.cs0En,
		CS0Act:  ctl.cs0Act,
		CS1En:   ctl.cs1En,
		CS1Act:  ctl.cs1Act,
	}
}

// Validate checks that a snapshot can be restored.
func (st *State) Validate() (err error) {
	if st.Version < STATE_MINIMUM_VERSION || st.Version > STATE_VERSION {
		err = &ErrState{Field: "version", Err: ErrStateVersion}
		return
	}

	switch {
	case (st.SR &^ SR_MASK) != 0:
		err = &ErrState{Field: "sr", Err: ErrStateField}
	case (st.SR&SR_BSY) != 0:
		// A transfer never spans a register access.
		err = &ErrState{Field: "sr", Err: ErrStateField}
	case st.DR > 0xff:
		err = &ErrState{Field: "dr", Err: ErrStateField}
	}

	return
}

// Restore replaces the controller state with a snapshot, and drives the
// outputs to match. On error the controller is left untouched.
func (ctl *Controller) Restore(st State) (err error) {
	err = st.Validate()
	if err != nil {
		return
	}

	ctl.cr1 = st.CR1
	ctl.cr2 = st.CR2
	ctl.sr = st.SR
	ctl.dr = st.DR
	ctl.csctrl = st.CSCtrl
	ctl.rxData = st.RxData
	ctl.spe = st.SPE
	ctl.mstr = st.MSTR
	ctl.cs0En = st.CS0En
	ctl.cs0Act = st.CS0Act
	ctl.cs1En = st.CS1En
	ctl.cs1Act = st.CS1Act

	ctl.updateChipSelect()
	ctl.updateInterrupt()

	return
}
