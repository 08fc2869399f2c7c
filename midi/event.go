package midi

// MIDI status bytes (channel 0)
const (
	NoteOff         uint8 = 0x80
	NoteOn          uint8 = 0x90
	CC              uint8 = 0xB0
	ChannelPressure uint8 = 0xD0
	PitchBend       uint8 = 0xE0
	SysExStart      uint8 = 0xF0
	SysExEnd        uint8 = 0xF7
)

// Mackie Control note numbers
const (
	NoteRec       uint8 = 0x00 // 0x00-0x07
	NoteSolo      uint8 = 0x08 // 0x08-0x0F
	NoteMute      uint8 = 0x10 // 0x10-0x17
	NoteSelect    uint8 = 0x18 // 0x18-0x1F
	NoteVPotPush  uint8 = 0x20 // 0x20-0x27
	NoteMotors    uint8 = 0x2B // PLUG-IN assign
	NoteNameValue uint8 = 0x34
	NoteSMPTEBeat uint8 = 0x35
	NoteRewind    uint8 = 0x5B
	NoteForward   uint8 = 0x5C
	NoteStop      uint8 = 0x5D
	NotePlay      uint8 = 0x5E
	NoteRecord    uint8 = 0x5F
	NoteScrub     uint8 = 0x65
	NoteTouch     uint8 = 0x68 // 0x68-0x6F strips, 0x70 master
	NoteTouchMain uint8 = 0x70
	NoteLEDSMPTE  uint8 = 0x71
	NoteLEDBeats  uint8 = 0x72
)

// Mackie Control controller numbers
const (
	CCVPot     uint8 = 0x10 // 0x10-0x17, relative input
	CCRing     uint8 = 0x30 // 0x30-0x37, LED ring output
	CCJog      uint8 = 0x3C
	CCSegment  uint8 = 0x40 // 0x40-0x4B, 7-segment cells
	SysExStrip uint8 = 0x12
)

// StripWidth is the number of characters per channel on one strip row.
const StripWidth = 7

// ChannelsPerUnit is the number of channel strips on one unit.
const ChannelsPerUnit = 8

// MasterChannel is the pitch bend channel of the primary unit's master fader.
const MasterChannel = 8
