package stlink

// USB Device Identifiers
const (
	VendorID = 0x0483

	ProductIDV1  = 0x3744 // ST-Link/V1
	ProductIDV2  = 0x3748 // ST-Link/V2
	ProductIDV21 = 0x374B // ST-Link/V2.1

	// Protocol endpoints live on interface 0
	InterfaceNum = 0
)

// Top-level command opcodes
const (
	CmdGetVersion       = 0xF1
	CmdDebug            = 0xF2
	CmdDFU              = 0xF3
	CmdSWIM             = 0xF4
	CmdGetCurrentMode   = 0xF5
	CmdGetTargetVoltage = 0xF7
)

// CmdDebug sub-opcodes
const (
	DebugEnterJTAG        = 0x00
	DebugGetStatus        = 0x01
	DebugForceDebug       = 0x02
	DebugAPIv1ResetSys    = 0x03
	DebugAPIv1ReadAllRegs = 0x04
	DebugAPIv1ReadReg     = 0x05
	DebugAPIv1WriteReg    = 0x06
	DebugReadMem32        = 0x07
	DebugWriteMem32       = 0x08
	DebugRunCore          = 0x09
	DebugStepCore         = 0x0A
	DebugAPIv1SetFP       = 0x0B
	DebugReadMem8         = 0x0C
	DebugWriteMem8        = 0x0D
	DebugAPIv1ClearFP     = 0x0E
	DebugAPIv1WriteDbgReg = 0x0F
	DebugAPIv1SetWatch    = 0x10
	DebugAPIv1Enter       = 0x20
	DebugExit             = 0x21
	DebugReadCoreID       = 0x22
	DebugAPIv2Enter       = 0x30
	DebugAPIv2ReadIDCodes = 0x31
	DebugAPIv2ResetSys    = 0x32
	DebugAPIv2ReadReg     = 0x33
	DebugAPIv2WriteReg    = 0x34
	DebugAPIv2WriteDbgReg = 0x35
	DebugAPIv2ReadDbgReg  = 0x36
	DebugAPIv2ReadAllRegs = 0x3A
	DebugAPIv2LastRWState = 0x3B
	DebugAPIv2DriveNRST   = 0x3C
	DebugAPIv2StartTrace  = 0x40
	DebugAPIv2StopTrace   = 0x41
	DebugAPIv2GetTraceNB  = 0x42
	DebugAPIv2SWDSetFreq  = 0x43
)

// Enter sub-opcodes (after DebugAPIv1Enter / DebugAPIv2Enter)
const (
	EnterJTAG = 0x00
	EnterSWD  = 0xA3
)

// CmdDFU sub-opcodes
const (
	DFUExit = 0x07
)

// CmdSWIM sub-opcodes
const (
	SWIMEnter = 0x00
	SWIMExit  = 0x01
)

// Device mode bytes (CmdGetCurrentMode reply)
const (
	devModeDFU        = 0x00
	devModeMass       = 0x01
	devModeDebug      = 0x02
	devModeSWIM       = 0x03
	devModeBootloader = 0x04
)

// Core status bytes (DebugGetStatus reply)
const (
	coreStatusRunning = 0x80
	coreStatusHalted  = 0x81
)

// MaxRW8 is the firmware's hard per-transfer ceiling for 8-bit memory
// access.
const MaxRW8 = 64

// apiV2JTAGVersion is the JTAG firmware version from which the v2
// command encodings apply.
const apiV2JTAGVersion = 11
