package lewei

import (
	"bytes"
	"encoding/binary"
	"time"
)

// CameraFlip selects the camera's image orientation.
type CameraFlip uint8

const (
	FlipUp         CameraFlip = 0
	FlipUpMirror   CameraFlip = 1
	FlipDownMirror CameraFlip = 2
	FlipDown       CameraFlip = 3
)

// ConfigWiFiSec selects the WiFi access-point security mode.
type ConfigWiFiSec uint8

const (
	WiFiSecOpen    ConfigWiFiSec = 0
	WiFiSecWPA2PSK ConfigWiFiSec = 1
)

// FileFrameFlag marks a FileFrame's position in a download sequence.
type FileFrameFlag uint32

const (
	FileFrameNotFound FileFrameFlag = 0
	FileFrameStart    FileFrameFlag = 1
	FileFrameData     FileFrameFlag = 2
	FileFrameEnd      FileFrameFlag = 3
)

// gmt8ToUTC re-anchors a unix-seconds value the device labels as local
// GMT+8 wall time into the equivalent UTC instant.
func gmt8ToUTC(unixSecs uint64) time.Time {
	return time.Unix(int64(unixSecs), 0).UTC().Add(-8 * time.Hour)
}

// cstrDecode truncates buf at the first NUL and decodes the prefix as
// UTF-8, tolerating invalid sequences rather than failing.
func cstrDecode(buf []byte) string {
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf)
}

// cstrEncode writes s into a fixed-width, NUL-padded slot of length n,
// truncating s if it does not fit.
func cstrEncode(s string, n int) []byte {
	b := make([]byte, n)
	copy(b, s)
	return b
}

const configLen = 140

// Config is the camera's persisted configuration record. Only the first
// five fields are writable; the rest are server-owned and round-trip
// unchanged through SetConfig.
type Config struct {
	WiFiChan uint8
	CamFlip  CameraFlip
	WiFiSec  ConfigWiFiSec
	WiFiName string
	WiFiPass string

	Time      time.Time
	SDMounted bool
	SDSize    uint64
	SDFree    uint64
	Version   string
}

// ConfigFromBytes parses a 140-byte Config body.
func ConfigFromBytes(buf []byte) (*Config, error) {
	if len(buf) != configLen {
		return nil, newErr(KindFraming, "config: wrong body size", nil)
	}
	c := &Config{
		WiFiChan: buf[0],
		CamFlip:  CameraFlip(buf[1]),
		WiFiSec:  ConfigWiFiSec(buf[2]),
		WiFiName: cstrDecode(buf[3:35]),
		WiFiPass: cstrDecode(buf[35:67]),
	}
	t := binary.LittleEndian.Uint64(buf[67:75])
	if t > uint64(1<<62) {
		c.Time = time.Unix(0, 0).UTC()
	} else {
		c.Time = time.Unix(int64(t), 0).UTC()
	}
	c.SDMounted = buf[75] != 0
	c.SDSize = binary.LittleEndian.Uint64(buf[76:84])
	c.SDFree = binary.LittleEndian.Uint64(buf[84:92])
	c.Version = cstrDecode(buf[92:140])
	return c, nil
}

// ToBytes encodes every field of Config into its 140-byte wire form.
// Use this only to build a SetConfig body from a Config obtained via
// GetConfig, so the server-owned fields round-trip unchanged.
func (c *Config) ToBytes() []byte {
	buf := make([]byte, configLen)
	buf[0] = c.WiFiChan
	buf[1] = byte(c.CamFlip)
	buf[2] = byte(c.WiFiSec)
	copy(buf[3:35], cstrEncode(c.WiFiName, 32))
	copy(buf[35:67], cstrEncode(c.WiFiPass, 32))
	binary.LittleEndian.PutUint64(buf[67:75], uint64(c.Time.Unix()))
	if c.SDMounted {
		buf[75] = 1
	}
	binary.LittleEndian.PutUint64(buf[76:84], c.SDSize)
	binary.LittleEndian.PutUint64(buf[84:92], c.SDFree)
	copy(buf[92:140], cstrEncode(c.Version, 48))
	return buf
}

const heartbeatLen = 64

// Heartbeat is the camera's periodic liveness/status record.
type Heartbeat struct {
	Mounted     bool
	SDSize      uint64
	SDFree      uint64
	ClientCount uint32
	Time        time.Time
}

// HeartbeatFromBytes parses a 64-byte Heartbeat body.
func HeartbeatFromBytes(buf []byte) (*Heartbeat, error) {
	if len(buf) != heartbeatLen {
		return nil, newErr(KindFraming, "heartbeat: wrong body size", nil)
	}
	h := &Heartbeat{
		Mounted:     binary.LittleEndian.Uint32(buf[0:4]) != 0,
		SDSize:      binary.LittleEndian.Uint64(buf[4:12]),
		SDFree:      binary.LittleEndian.Uint64(buf[12:20]),
		ClientCount: binary.LittleEndian.Uint32(buf[20:24]),
	}
	h.Time = gmt8ToUTC(binary.LittleEndian.Uint64(buf[24:32]))
	return h, nil
}

const recordPlanLen = 20

// RecordPlan describes a recurring recording schedule.
type RecordPlan struct {
	Active     bool
	DayFlags   uint32
	StartSecs  uint32
	EndSecs    uint32
	MaxDurSecs uint32
}

// RecordPlanFromBytes parses a 20-byte RecordPlan body.
func RecordPlanFromBytes(buf []byte) (*RecordPlan, error) {
	if len(buf) != recordPlanLen {
		return nil, newErr(KindFraming, "recordplan: wrong body size", nil)
	}
	return &RecordPlan{
		Active:     binary.LittleEndian.Uint32(buf[0:4]) != 0,
		DayFlags:   binary.LittleEndian.Uint32(buf[4:8]),
		StartSecs:  binary.LittleEndian.Uint32(buf[8:12]),
		EndSecs:    binary.LittleEndian.Uint32(buf[12:16]),
		MaxDurSecs: binary.LittleEndian.Uint32(buf[16:20]),
	}, nil
}

// ToBytes encodes a RecordPlan back to its 20-byte wire form.
func (p *RecordPlan) ToBytes() []byte {
	buf := make([]byte, recordPlanLen)
	active := uint32(0)
	if p.Active {
		active = 1
	}
	binary.LittleEndian.PutUint32(buf[0:4], active)
	binary.LittleEndian.PutUint32(buf[4:8], p.DayFlags)
	binary.LittleEndian.PutUint32(buf[8:12], p.StartSecs)
	binary.LittleEndian.PutUint32(buf[12:16], p.EndSecs)
	binary.LittleEndian.PutUint32(buf[16:20], p.MaxDurSecs)
	return buf
}

const recordListItemLen = 116

// RecordListItem describes one entry in a recording's directory listing.
type RecordListItem struct {
	StartTime time.Time
	TimeLen   uint32
	Path      string
}

// RecordListFromBytes decodes a contiguous run of RecordListItem entries.
func RecordListFromBytes(buf []byte) ([]RecordListItem, error) {
	if len(buf)%recordListItemLen != 0 {
		return nil, newErr(KindFraming, "recordlist: misaligned buffer", nil)
	}
	n := len(buf) / recordListItemLen
	items := make([]RecordListItem, n)
	for i := 0; i < n; i++ {
		e := buf[i*recordListItemLen : (i+1)*recordListItemLen]
		items[i] = RecordListItem{
			StartTime: gmt8ToUTC(uint64(binary.LittleEndian.Uint32(e[0:4]))),
			TimeLen:   binary.LittleEndian.Uint32(e[4:8]),
			Path:      cstrDecode(e[16:116]),
		}
	}
	return items, nil
}

const pictureListItemLen = 124

// PictureListItem describes one entry in a stored-pictures listing.
type PictureListItem struct {
	Size uint32
	Path string
}

// PictureListFromBytes decodes a contiguous run of PictureListItem entries.
// Entries whose flag is not 1 are protocol violations (KindProtocol).
func PictureListFromBytes(buf []byte) ([]PictureListItem, error) {
	if len(buf)%pictureListItemLen != 0 {
		return nil, newErr(KindFraming, "piclist: misaligned buffer", nil)
	}
	n := len(buf) / pictureListItemLen
	items := make([]PictureListItem, n)
	for i := 0; i < n; i++ {
		e := buf[i*pictureListItemLen : (i+1)*pictureListItemLen]
		flag := binary.LittleEndian.Uint32(e[0:4])
		if flag != 1 {
			return nil, newProtoErr("piclist: entry flag != 1", int64(flag))
		}
		items[i] = PictureListItem{
			Size: binary.LittleEndian.Uint32(e[4:8]),
			Path: cstrDecode(e[24:124]),
		}
	}
	return items, nil
}

const pictureHeaderLen = 128

// Picture is a single captured still image: a header plus JPEG bytes.
type Picture struct {
	TimeMS uint32
	Path   string
	JPEG   []byte
}

// PictureFromBytes parses a Picture body: a 128-byte header followed by
// size JPEG bytes.
func PictureFromBytes(buf []byte) (*Picture, error) {
	if len(buf) < pictureHeaderLen {
		return nil, newErr(KindFraming, "picture: short header", nil)
	}
	size := binary.LittleEndian.Uint32(buf[0:4])
	timeMS := binary.LittleEndian.Uint32(buf[4:8])
	path := cstrDecode(buf[12:112])
	if uint64(pictureHeaderLen)+uint64(size) != uint64(len(buf)) {
		return nil, newErr(KindFraming, "picture: declared size mismatch", nil)
	}
	return &Picture{
		TimeMS: timeMS,
		Path:   path,
		JPEG:   append([]byte{}, buf[pictureHeaderLen:]...),
	}, nil
}

const fileFrameHeaderLen = 196

// FileFrame is one chunk of a file-download stream.
type FileFrame struct {
	Flag    FileFrameFlag
	TotSize uint32
	Path    string
	MD5Hex  string
	Payload []byte
}

// FileFrameFromBytes parses a FileFrame body: a 196-byte header (with 48
// bytes of unlabeled reserved padding between the md5 field and the
// payload) followed by size payload bytes.
func FileFrameFromBytes(buf []byte) (*FileFrame, error) {
	if len(buf) < fileFrameHeaderLen {
		return nil, newErr(KindFraming, "fileframe: short header", nil)
	}
	flag := FileFrameFlag(binary.LittleEndian.Uint32(buf[0:4]))
	size := binary.LittleEndian.Uint32(buf[4:8])
	totSize := binary.LittleEndian.Uint32(buf[8:12])
	path := cstrDecode(buf[16:116])
	md5 := cstrDecode(buf[116:148])
	if uint64(fileFrameHeaderLen)+uint64(size) != uint64(len(buf)) {
		return nil, newErr(KindFraming, "fileframe: declared size mismatch", nil)
	}
	return &FileFrame{
		Flag:    flag,
		TotSize: totSize,
		Path:    path,
		MD5Hex:  md5,
		Payload: append([]byte{}, buf[fileFrameHeaderLen:]...),
	}, nil
}

const videoFrameSubheaderLen = 32

// VideoFrame is one chunk of a live or replayed H.264 stream.
type VideoFrame struct {
	Flag   uint32
	Count  uint64
	GPhoto uint32
	Data   []byte
}

// VideoFrameFromBytes parses a VideoFrame body: a 32-byte subheader
// followed by size H.264 bytes.
func VideoFrameFromBytes(buf []byte) (*VideoFrame, error) {
	if len(buf) < videoFrameSubheaderLen {
		return nil, newErr(KindFraming, "videoframe: short subheader", nil)
	}
	flag := binary.LittleEndian.Uint32(buf[0:4])
	size := binary.LittleEndian.Uint32(buf[4:8])
	count := binary.LittleEndian.Uint64(buf[8:16])
	gphoto := binary.LittleEndian.Uint32(buf[16:20])
	if uint64(videoFrameSubheaderLen)+uint64(size) != uint64(len(buf)) {
		return nil, newErr(KindFraming, "videoframe: declared size mismatch", nil)
	}
	return &VideoFrame{
		Flag:   flag,
		Count:  count,
		GPhoto: gphoto,
		Data:   append([]byte{}, buf[videoFrameSubheaderLen:]...),
	}, nil
}

// ReplayFrame is a VideoFrame variant carrying an extra leading
// { frame_num, count2 } pair inside the subheader-framed payload.
type ReplayFrame struct {
	VideoFrame
	FrameNum uint32
	Count2   uint32
}

// ReplayFrameFromBytes parses a replay-stream frame: the 32-byte
// subheader, then an 8-byte { frame_num, count2 } pair, then the
// remaining H.264 bytes.
func ReplayFrameFromBytes(buf []byte) (*ReplayFrame, error) {
	vf, err := VideoFrameFromBytes(buf)
	if err != nil {
		return nil, err
	}
	if len(vf.Data) < 8 {
		return nil, newErr(KindFraming, "replayframe: short leading pair", nil)
	}
	return &ReplayFrame{
		VideoFrame: VideoFrame{
			Flag:   vf.Flag,
			Count:  vf.Count,
			GPhoto: vf.GPhoto,
			Data:   vf.Data[8:],
		},
		FrameNum: binary.LittleEndian.Uint32(vf.Data[0:4]),
		Count2:   binary.LittleEndian.Uint32(vf.Data[4:8]),
	}, nil
}
