package lewei

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// CommandType enumerates the lewei_cam wire commands. Values must match the
// device's wire encoding exactly.
type CommandType uint32

const (
	CmdHeartbeat    CommandType = 1
	CmdStartStream  CommandType = 2
	CmdStopStream   CommandType = 3
	CmdSetTime      CommandType = 4
	CmdGetTime      CommandType = 5
	CmdGetRecPlan   CommandType = 6
	CmdGetRecList   CommandType = 8
	CmdStartReplay  CommandType = 9
	CmdStopReplay   CommandType = 16
	CmdSetRecPlan   CommandType = 17
	CmdGetFile      CommandType = 18
	CmdTakePic      CommandType = 19
	CmdDelFile      CommandType = 20
	CmdReformatSD   CommandType = 21
	CmdSetWifiName  CommandType = 22
	CmdSetWifiPass  CommandType = 23
	CmdSetWifiChan  CommandType = 24
	CmdRestartWifi  CommandType = 25
	CmdSetWifiDefs  CommandType = 32
	CmdGetCamFlip   CommandType = 33
	CmdSetCamFlip   CommandType = 34
	CmdGetBaudrate  CommandType = 35
	CmdSetBaudrate  CommandType = 36
	CmdGetConfig    CommandType = 37
	CmdSetConfig    CommandType = 38
	CmdGetPicList   CommandType = 39
	CmdGet1080p     CommandType = 40
	CmdSet1080p     CommandType = 41
	CmdGetPicList2  CommandType = 42
	CmdTakePic2     CommandType = 43
	CmdGetRecTime   CommandType = 48
	CmdSetRecTime   CommandType = 49
	CmdRetStream    CommandType = 257
	CmdRetReplay    CommandType = 259
	CmdRetReplayEnd CommandType = 261
	CmdRetGetFile   CommandType = 262
)

// Valid reports whether c is one of the known wire command types.
func (c CommandType) Valid() bool {
	switch c {
	case CmdHeartbeat, CmdStartStream, CmdStopStream, CmdSetTime, CmdGetTime,
		CmdGetRecPlan, CmdGetRecList, CmdStartReplay, CmdStopReplay, CmdSetRecPlan,
		CmdGetFile, CmdTakePic, CmdDelFile, CmdReformatSD, CmdSetWifiName,
		CmdSetWifiPass, CmdSetWifiChan, CmdRestartWifi, CmdSetWifiDefs, CmdGetCamFlip,
		CmdSetCamFlip, CmdGetBaudrate, CmdSetBaudrate, CmdGetConfig, CmdSetConfig,
		CmdGetPicList, CmdGet1080p, CmdSet1080p, CmdGetPicList2, CmdTakePic2,
		CmdGetRecTime, CmdSetRecTime, CmdRetStream, CmdRetReplay, CmdRetReplayEnd,
		CmdRetGetFile:
		return true
	default:
		return false
	}
}

func (c CommandType) String() string {
	switch c {
	case CmdHeartbeat:
		return "heartbeat"
	case CmdStartStream:
		return "startstream"
	case CmdStopStream:
		return "stopstream"
	case CmdSetTime:
		return "settime"
	case CmdGetTime:
		return "gettime"
	case CmdGetRecPlan:
		return "getrecplan"
	case CmdGetRecList:
		return "getreclist"
	case CmdStartReplay:
		return "startreplay"
	case CmdStopReplay:
		return "stopreplay"
	case CmdSetRecPlan:
		return "setrecplan"
	case CmdGetFile:
		return "getfile"
	case CmdTakePic:
		return "takepic"
	case CmdDelFile:
		return "delfile"
	case CmdReformatSD:
		return "reformatsd"
	case CmdSetWifiName:
		return "setwifiname"
	case CmdSetWifiPass:
		return "setwifipass"
	case CmdSetWifiChan:
		return "setwifichan"
	case CmdRestartWifi:
		return "restartwifi"
	case CmdSetWifiDefs:
		return "setwifidefs"
	case CmdGetCamFlip:
		return "getcamflip"
	case CmdSetCamFlip:
		return "setcamflip"
	case CmdGetBaudrate:
		return "getbaudrate"
	case CmdSetBaudrate:
		return "setbaudrate"
	case CmdGetConfig:
		return "getconfig"
	case CmdSetConfig:
		return "setconfig"
	case CmdGetPicList:
		return "getpiclist"
	case CmdGet1080p:
		return "get1080p"
	case CmdSet1080p:
		return "set1080p"
	case CmdGetPicList2:
		return "getpiclist2"
	case CmdTakePic2:
		return "takepic2"
	case CmdGetRecTime:
		return "getrectime"
	case CmdSetRecTime:
		return "setrectime"
	case CmdRetStream:
		return "retstream"
	case CmdRetReplay:
		return "retreplay"
	case CmdRetReplayEnd:
		return "retreplayend"
	case CmdRetGetFile:
		return "retgetfile"
	default:
		return fmt.Sprintf("cmdtype(%d)", uint32(c))
	}
}

// Header layout: magic + 9 little-endian uint32s (cmd_type followed by 8
// args). Slot indices below index into the 8 arg ints, matching the
// device's HDR_ARG_* conventions.
const (
	hdrMagicLen = 10
	hdrNumInts  = 9
	hdrIntsOff  = hdrMagicLen
	// HeaderLen is the fixed size of a Command header on the wire.
	HeaderLen = hdrMagicLen + hdrNumInts*4
	bodyOff   = HeaderLen

	// ArgArg1 is the scalar in/out slot used by most non-streaming RPCs.
	ArgArg1 = 0
	// ArgBodySize mirrors len(body); Encode keeps it in sync.
	ArgBodySize = 2
	// ArgStreamType selects the unmunge transform for streamed frames.
	ArgStreamType = 3
	// ArgKey1 and ArgKey2 carry the per-frame unmunge keys.
	ArgKey1 = 4
	ArgKey2 = 5
)

var hdrMagic = []byte("lewei_cmd\x00")

// Command is a request or response on the lewei_cam wire: a command type,
// eight uint32 arguments, and an opaque body.
type Command struct {
	Type CommandType
	Args [8]uint32
	Body []byte
}

// NewCommand creates a Command with the body-size argument set from body.
func NewCommand(typ CommandType, body []byte) *Command {
	c := &Command{Type: typ, Body: body}
	c.Args[ArgBodySize] = uint32(len(body))
	return c
}

// SetBody replaces the body and keeps ArgBodySize in sync.
func (c *Command) SetBody(body []byte) {
	c.Body = body
	c.Args[ArgBodySize] = uint32(len(body))
}

// Arg1 returns the conventional scalar in/out argument.
func (c *Command) Arg1() uint32 { return c.Args[ArgArg1] }

// Encode writes the header followed by the body. It enforces
// body_size == len(body).
func (c *Command) Encode() []byte {
	c.Args[ArgBodySize] = uint32(len(c.Body))

	buf := make([]byte, HeaderLen+len(c.Body))
	copy(buf, hdrMagic)
	binary.LittleEndian.PutUint32(buf[hdrIntsOff:], uint32(c.Type))
	for i, a := range c.Args {
		binary.LittleEndian.PutUint32(buf[hdrIntsOff+4+i*4:], a)
	}
	copy(buf[bodyOff:], c.Body)
	return buf
}

// DecodeHeader parses the 46-byte header. The body must be attached
// separately via SetBody once read from the wire (see BodySize).
func DecodeHeader(hdr []byte) (*Command, error) {
	if len(hdr) < HeaderLen {
		return nil, newErr(KindFraming, "short header", nil)
	}
	if !bytes.Equal(hdr[:hdrMagicLen], hdrMagic) {
		return nil, newErr(KindFraming, "bad magic", nil)
	}

	typ := CommandType(binary.LittleEndian.Uint32(hdr[hdrIntsOff:]))
	if !typ.Valid() {
		return nil, newErr(KindUnsupported, fmt.Sprintf("unknown cmd_type %d", uint32(typ)), nil)
	}

	c := &Command{Type: typ}
	for i := range c.Args {
		c.Args[i] = binary.LittleEndian.Uint32(hdr[hdrIntsOff+4+i*4:])
	}
	return c, nil
}

// BodySize returns the declared body length to read next, from the
// body_size argument slot.
func (c *Command) BodySize() int { return int(c.Args[ArgBodySize]) }
