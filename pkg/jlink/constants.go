package jlink

// USB Device Identifiers
const (
	VendorID  = 0x1366
	ProductID = 0x0101 // J-Link Base

	// Protocol endpoints live on interface 0
	InterfaceNum = 0
)

// Emulator commands (USB protocol, document RM08001)
const (
	CmdVersion                 = 0x01 // Retrieve the firmware version string
	CmdResetTRST               = 0x02
	CmdResetTarget             = 0x03
	CmdSetSpeed                = 0x05
	CmdGetState                = 0x07
	CmdSetKSPower              = 0x08
	CmdRegister                = 0x09
	CmdGetSpeeds               = 0xC0 // Base freq. and min. divider of the emulator CPU
	CmdGetHWInfo               = 0xC1
	CmdGetCounters             = 0xC2
	CmdSelectIF                = 0xC7
	CmdHWClock                 = 0xC8
	CmdHWTMS0                  = 0xC9
	CmdHWTMS1                  = 0xCA
	CmdHWData0                 = 0xCB
	CmdHWData1                 = 0xCC
	CmdHWJTAG                  = 0xCD
	CmdHWJTAG2                 = 0xCE
	CmdHWJTAG3                 = 0xCF
	CmdHWReleaseResetStopEx    = 0xD0
	CmdHWReleaseResetStopTimed = 0xD1
	CmdGetMaxMemBlock          = 0xD4 // Maximum memory block-size
	CmdHWJTAGWrite             = 0xD5
	CmdHWJTAGGetResult         = 0xD6
	CmdHWReset0                = 0xDC
	CmdHWReset1                = 0xDD
	CmdHWTRST0                 = 0xDE
	CmdHWTRST1                 = 0xDF
	CmdGetCaps                 = 0xE8 // Capabilities of the emulator
	CmdGetCPUCaps              = 0xE9
	CmdExecCPUCmd              = 0xEA
	CmdGetCapsEx               = 0xED // Extended capabilities
	CmdGetHWVersion            = 0xF0 // Hardware version of the emulator
	CmdWriteDCC                = 0xF1
	CmdReadConfig              = 0xF2
	CmdWriteConfig             = 0xF3
	CmdWriteMem                = 0xF4
	CmdReadMem                 = 0xF5
	CmdMeasureRTCKReact        = 0xF6
	CmdWriteMemARM79           = 0xF7
	CmdReadMemARM79            = 0xF8
)

// Capability bits (CmdGetCaps reply)
const (
	CapReserved1        = 0 // Always set
	CapGetHWVersion     = 1
	CapWriteDCC         = 2
	CapAdaptiveClocking = 3
	CapReadConfig       = 4
	CapWriteConfig      = 5
	CapTrace            = 6
	CapWriteMem         = 7
	CapReadMem          = 8
	CapSpeedInfo        = 9
	CapExecCode         = 10
	CapGetMaxBlockSize  = 11
	CapGetHWInfo        = 12
	CapSetKSPower       = 13
	CapResetStopTimed   = 14
	CapReserved2        = 15
	CapMeasureRTCKReact = 16
	CapSelectIF         = 17
	CapRWMemARM79       = 18
	CapGetCounters      = 19
	CapReadDCC          = 20
	CapGetCPUCaps       = 21
	CapExecCPUCmd       = 22
	CapSWO              = 23
	CapWriteDCCEx       = 24
	CapUpdateFirmwareEx = 25
	CapFileIO           = 26
	CapRegister         = 27
	CapIndicators       = 28
	CapTestNetSpeed     = 29
	CapRawTrace         = 30
	CapReserved3        = 31
)

// capabilityNames maps capability bits to the command family they gate
var capabilityNames = map[int]string{
	CapReserved1:        "always 1",
	CapGetHWVersion:     "EMU_CMD_GET_HW_VERSION",
	CapWriteDCC:         "EMU_CMD_WRITE_DCC",
	CapAdaptiveClocking: "adaptive clocking",
	CapReadConfig:       "EMU_CMD_READ_CONFIG",
	CapWriteConfig:      "EMU_CMD_WRITE_CONFIG",
	CapTrace:            "trace commands",
	CapWriteMem:         "EMU_CMD_WRITE_MEM",
	CapReadMem:          "EMU_CMD_READ_MEM",
	CapSpeedInfo:        "EMU_CMD_GET_SPEEDS",
	CapExecCode:         "EMU_CMD_CODE_...",
	CapGetMaxBlockSize:  "EMU_CMD_GET_MAX_MEM_BLOCK",
	CapGetHWInfo:        "EMU_CMD_GET_HW_INFO",
	CapSetKSPower:       "EMU_CMD_SET_KS_POWER",
	CapResetStopTimed:   "EMU_CMD_HW_RELEASE_RESET_STOP_TIMED",
	CapReserved2:        "reserved",
	CapMeasureRTCKReact: "EMU_CMD_MEASURE_RTCK_REACT",
	CapSelectIF:         "EMU_CMD_SELECT_IF",
	CapRWMemARM79:       "EMU_CMD_READ/WRITE_MEM_ARM79",
	CapGetCounters:      "EMU_CMD_GET_COUNTERS",
	CapReadDCC:          "EMU_CMD_READ_DCC",
	CapGetCPUCaps:       "EMU_CMD_GET_CPU_CAPS",
	CapExecCPUCmd:       "EMU_CMD_EXEC_CPU_CMD",
	CapSWO:              "EMU_CMD_SWO",
	CapWriteDCCEx:       "EMU_CMD_WRITE_DCC_EX",
	CapUpdateFirmwareEx: "EMU_CMD_UPDATE_FIRMWARE_EX",
	CapFileIO:           "EMU_CMD_FILE_IO",
	CapRegister:         "EMU_CMD_REGISTER",
	CapIndicators:       "EMU_CMD_INDICATORS",
	CapTestNetSpeed:     "EMU_CMD_TEST_NET_SPEED",
	CapRawTrace:         "EMU_CMD_RAWTRACE",
	CapReserved3:        "reserved",
}

// CapabilityName returns the command family gated by a capability bit.
func CapabilityName(bit int) string {
	if name, ok := capabilityNames[bit]; ok {
		return name
	}
	return "unknown"
}

// Hardware types (high field of the packed hardware version)
const (
	HWTypeJLink          = 0
	HWTypeJTrace         = 1
	HWTypeFlasher        = 2
	HWTypeJLinkPro       = 3
	HWTypeJLinkLiteADI   = 5
	HWTypeJLinkLiteXMC4K = 16
	HWTypeJLinkLiteXMC42 = 17
	HWTypeLPCLink2       = 18
)

var hwTypeNames = map[int]string{
	HWTypeJLink:          "J-Link",
	HWTypeJTrace:         "J-Trace",
	HWTypeFlasher:        "Flasher",
	HWTypeJLinkPro:       "J-Link Pro",
	HWTypeJLinkLiteADI:   "J-Link Lite-ADI",
	HWTypeJLinkLiteXMC4K: "J-Link Lite-XMC4000",
	HWTypeJLinkLiteXMC42: "J-Link Lite-XMC4200",
	HWTypeLPCLink2:       "J-Link on LPC-Link2",
}

// Target interfaces selectable with CmdSelectIF
const (
	InterfaceJTAG = 0x00
	InterfaceSWD  = 0x01
)

// ConfigBlockSize is the size of the emulator configuration block
// returned by CmdReadConfig.
const ConfigBlockSize = 256
