package spinor

import (
	"context"

	"github.com/snorcore/spinor/internal/catalog"
	"github.com/snorcore/spinor/internal/vocab"
	"github.com/snorcore/spinor/internal/xdebug"
)

// commanderAdapter implements resolve.Commander, catalog.Bus, and
// catalog.RegisterIO against one Flash's Transport — the single place
// SPI-NOR semantics (opcode/address/dummy/data shaping) turn into raw
// Transport Op values.
type commanderAdapter struct {
	ctx   context.Context
	t     Transport
	f     *Flash // nil during pre-resolution probing (resolve.Commander use)
	debug *xdebug.Sink
}

func (a *commanderAdapter) trace(mask xdebug.Mask, format string, args ...interface{}) {
	if a.debug == nil {
		return
	}
	a.debug.Printf("bus", mask, format, args...)
}

func (a *commanderAdapter) ReadID(opcode byte, dummyCycles int, busWidth int, length int) ([]byte, error) {
	op := &Op{
		Opcode:       opcode,
		DummyCycles:  dummyCycles,
		Data:         make([]byte, length),
		CmdBusWidth:  busWidth,
		DataBusWidth: busWidth,
	}
	if err := a.t.Exec(a.ctx, op); err != nil {
		return nil, err
	}
	return op.Data, nil
}

func (a *commanderAdapter) ReadSFDP(addr uint32, length int, busWidth int) ([]byte, error) {
	op := &Op{
		Opcode:       vocab.OpReadSFDP,
		Addr:         []byte{byte(addr >> 16), byte(addr >> 8), byte(addr)},
		DummyCycles:  8,
		Data:         make([]byte, length),
		CmdBusWidth:  busWidth,
		AddrBusWidth: busWidth,
		DataBusWidth: busWidth,
	}
	if err := a.t.Exec(a.ctx, op); err != nil {
		return nil, err
	}
	return op.Data, nil
}

func (a *commanderAdapter) ExecSimple(opcode byte, busWidth int) error {
	return a.t.Exec(a.ctx, &Op{Opcode: opcode, CmdBusWidth: busWidth})
}

// Exec implements catalog.Bus: issue one opcode with the given phases at
// the requested IoMode.
func (a *commanderAdapter) Exec(opcode byte, addr []byte, dummyCycles int, data []byte, write bool, mode catalog.IoMode) error {
	op := &Op{
		Opcode:       opcode,
		Addr:         addr,
		DummyCycles:  dummyCycles,
		Data:         data,
		Write:        write,
		CmdBusWidth:  int(mode.CmdBW()),
		AddrBusWidth: int(mode.AddrBW()),
		DataBusWidth: int(mode.DataBW()),
		DTR:          mode.DTR(),
	}
	a.trace(DebugOpcodes, "exec opcode=%#02x addr=%x dummy=%d write=%v len=%d mode=%v", opcode, addr, dummyCycles, write, len(data), mode)
	return a.t.Exec(a.ctx, op)
}

func (a *commanderAdapter) readRegister(name vocab.RegisterName, opcode byte, length int) (uint32, error) {
	data := make([]byte, length)
	if err := a.t.Exec(a.ctx, &Op{Opcode: opcode, Data: data, CmdBusWidth: 1, DataBusWidth: 1}); err != nil {
		return 0, err
	}
	var v uint32
	for _, b := range data {
		v = v<<8 | uint32(b)
	}
	return v, nil
}

func (a *commanderAdapter) ReadRegister(name vocab.RegisterName) (uint32, error) {
	access, ok := a.findRegisterAccess(name)
	if !ok {
		return 0, wrapStatus(StatusUnsupported, "read_register: no access for %s", name)
	}
	v, err := a.readViaAccess(access, false, nil)
	a.trace(DebugRegisters, "read %s = %#x err=%v", name, v, err)
	return v, err
}

func (a *commanderAdapter) WriteRegister(name vocab.RegisterName, value uint32) error {
	access, ok := a.findRegisterAccess(name)
	if !ok {
		return wrapStatus(StatusUnsupported, "write_register: no access for %s", name)
	}
	data := make([]byte, registerDataBytes(access))
	v := value
	for i := len(data) - 1; i >= 0; i-- {
		data[i] = byte(v)
		v >>= 8
	}
	_, err := a.readViaAccess(access, true, data)
	a.trace(DebugRegisters, "write %s = %#x err=%v", name, value, err)
	return err
}

// registerDataBytes is access.DataBytes, except for a RegMulti access whose
// own DataBytes is never set at table-authoring time (only its Parts carry
// one) — there it's the sum of every Part's width, e.g. 2 for a combined
// SR1|CR write.
func registerDataBytes(access catalog.RegisterAccess) int {
	if access.Kind != catalog.RegMulti {
		return int(access.DataBytes)
	}
	n := 0
	for _, part := range access.Parts {
		n += registerDataBytes(part)
	}
	return n
}

func (a *commanderAdapter) findRegisterAccess(name vocab.RegisterName) (catalog.RegisterAccess, bool) {
	if a.f == nil || a.f.part == nil {
		return catalog.RegisterAccess{}, false
	}
	for _, r := range a.f.part.Regs {
		if r.Name == name {
			return r, true
		}
	}
	if access, ok := defaultRegisterAccess[name]; ok {
		return access, true
	}
	return catalog.RegisterAccess{}, false
}

// defaultRegisterAccess supplies the common-case single-opcode access for
// registers most parts reach the generic way; a part or vendor file only
// needs to declare Regs for a register whose access deviates from this
// (e.g. a combined multi-byte WRSR).
var defaultRegisterAccess = map[vocab.RegisterName]catalog.RegisterAccess{
	vocab.RegSR1: {Kind: catalog.RegNormal, Name: vocab.RegSR1, OpcodeRead: vocab.OpRDSR, OpcodeWrite: vocab.OpWRSR, DataBytes: 1},
	vocab.RegSR2: {Kind: catalog.RegNormal, Name: vocab.RegSR2, OpcodeRead: vocab.OpRDSR2, OpcodeWrite: vocab.OpWRSR2, DataBytes: 1},
	vocab.RegEAR: {Kind: catalog.RegNormal, Name: vocab.RegEAR, OpcodeRead: vocab.OpRDEAR, OpcodeWrite: vocab.OpWREAR, DataBytes: 1},
	vocab.RegSCUR: {Kind: catalog.RegNormal, Name: vocab.RegSCUR, OpcodeRead: vocab.OpRDSCUR, OpcodeWrite: vocab.OpWRSCUR, DataBytes: 1},
}

func (a *commanderAdapter) readViaAccess(access catalog.RegisterAccess, write bool, data []byte) (uint32, error) {
	if access.Kind == catalog.RegMulti {
		if write {
			// A combined write (e.g. GigaDevice's single WRSR carrying both
			// SR1 and SR2) shares one opcode across every Part; issue it once
			// with the full data rather than repeating the bus transaction
			// per Part, which would also require re-asserting WREN each time.
			return a.readViaAccess(access.Parts[0], true, data)
		}
		var v uint32
		for _, part := range access.Parts {
			pv, err := a.readViaAccess(part, false, nil)
			if err != nil {
				return 0, err
			}
			v = v<<8 | pv
		}
		return v, nil
	}

	opcode := access.OpcodeRead
	if write {
		opcode = access.OpcodeWrite
	}
	if !write {
		data = make([]byte, access.DataBytes)
	}
	op := &Op{Opcode: opcode, Data: data, Write: write, CmdBusWidth: 1, DataBusWidth: 1}
	if err := a.t.Exec(a.ctx, op); err != nil {
		return 0, err
	}
	var v uint32
	for _, b := range op.Data {
		v = v<<8 | uint32(b)
	}
	return v, nil
}

func (a *commanderAdapter) ExecRegisterOp(access catalog.RegisterAccess, write bool, data []byte) error {
	_, err := a.readViaAccess(access, write, data)
	return err
}

func (a *commanderAdapter) CurrentAddrBytes() int {
	if a.f == nil {
		return 3
	}
	return a.f.addrBytes
}

// capabilityAdapter implements negotiate.CapabilityChecker.
type capabilityAdapter struct {
	ctx context.Context
	t   Transport
}

func (a *capabilityAdapter) SupportsOp(mode catalog.IoMode, opcode byte, dummyCycles int) bool {
	return a.t.SupportsOp(int(mode.CmdBW()), int(mode.AddrBW()), int(mode.DataBW()), mode.DTR(), opcode, dummyCycles)
}

func (a *capabilityAdapter) SupportsQPIBulkRead() bool {
	return a.t.SupportsOp(4, 4, 4, false, vocab.Op4ReadFastQI, 6)
}

func (a *capabilityAdapter) SupportsDPIBulkRead() bool {
	return a.t.SupportsOp(2, 2, 2, false, vocab.OpReadFastDI, 4)
}
