package lewei

import (
	"encoding/binary"
	"testing"
	"time"
)

func TestConfigRoundTrip(t *testing.T) {
	c := &Config{
		WiFiChan:  6,
		CamFlip:   FlipDownMirror,
		WiFiSec:   WiFiSecWPA2PSK,
		WiFiName:  "camera-01",
		WiFiPass:  "hunter2",
		Time:      time.Unix(1700000000, 0).UTC(),
		SDMounted: true,
		SDSize:    1 << 34,
		SDFree:    1 << 30,
		Version:   "1.2.3",
	}
	buf := c.ToBytes()
	if len(buf) != configLen {
		t.Fatalf("ToBytes length = %d, want %d", len(buf), configLen)
	}
	got, err := ConfigFromBytes(buf)
	if err != nil {
		t.Fatalf("ConfigFromBytes: %v", err)
	}
	if got.WiFiChan != c.WiFiChan || got.CamFlip != c.CamFlip || got.WiFiSec != c.WiFiSec ||
		got.WiFiName != c.WiFiName || got.WiFiPass != c.WiFiPass || !got.Time.Equal(c.Time) ||
		got.SDMounted != c.SDMounted || got.SDSize != c.SDSize || got.SDFree != c.SDFree || got.Version != c.Version {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, c)
	}
}

func TestConfigFromBytesRejectsWrongSize(t *testing.T) {
	if _, err := ConfigFromBytes(make([]byte, configLen-1)); err == nil {
		t.Fatal("expected error for short config body")
	}
}

func TestHeartbeatParsesGMT8Offset(t *testing.T) {
	buf := make([]byte, heartbeatLen)
	binary.LittleEndian.PutUint32(buf[0:4], 1)
	binary.LittleEndian.PutUint64(buf[4:12], 1<<33)
	binary.LittleEndian.PutUint64(buf[12:20], 1<<20)
	binary.LittleEndian.PutUint32(buf[20:24], 3)
	deviceSecs := uint64(1700003600) // device-local GMT+8 seconds
	binary.LittleEndian.PutUint64(buf[24:32], deviceSecs)

	h, err := HeartbeatFromBytes(buf)
	if err != nil {
		t.Fatalf("HeartbeatFromBytes: %v", err)
	}
	want := time.Unix(int64(deviceSecs), 0).UTC().Add(-8 * time.Hour)
	if !h.Time.Equal(want) {
		t.Fatalf("Time = %v, want %v", h.Time, want)
	}
	if !h.Mounted || h.ClientCount != 3 {
		t.Fatalf("unexpected parse: %+v", h)
	}
}

func TestHeartbeatFromBytesRejectsWrongSize(t *testing.T) {
	if _, err := HeartbeatFromBytes(make([]byte, heartbeatLen+1)); err == nil {
		t.Fatal("expected error for wrong-size heartbeat body")
	}
}

func TestRecordPlanRoundTrip(t *testing.T) {
	p := &RecordPlan{Active: true, DayFlags: 0b1010101, StartSecs: 3600, EndSecs: 7200, MaxDurSecs: 600}
	buf := p.ToBytes()
	if len(buf) != recordPlanLen {
		t.Fatalf("ToBytes length = %d, want %d", len(buf), recordPlanLen)
	}
	got, err := RecordPlanFromBytes(buf)
	if err != nil {
		t.Fatalf("RecordPlanFromBytes: %v", err)
	}
	if *got != *p {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, p)
	}
}

func TestRecordListFromBytesRejectsMisalignment(t *testing.T) {
	if _, err := RecordListFromBytes(make([]byte, recordListItemLen+1)); err == nil {
		t.Fatal("expected error for misaligned recordlist buffer")
	}
}

func TestRecordListFromBytesDecodesPathAndUTCTime(t *testing.T) {
	buf := make([]byte, recordListItemLen*2)
	binary.LittleEndian.PutUint32(buf[0:4], 1700003600)
	binary.LittleEndian.PutUint32(buf[4:8], 120)
	copy(buf[16:116], "/sdcard/rec/0001.h264")

	items, err := RecordListFromBytes(buf)
	if err != nil {
		t.Fatalf("RecordListFromBytes: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Path != "/sdcard/rec/0001.h264" || items[0].TimeLen != 120 {
		t.Fatalf("unexpected item: %+v", items[0])
	}
	want := time.Unix(1700003600, 0).UTC().Add(-8 * time.Hour)
	if !items[0].StartTime.Equal(want) {
		t.Fatalf("StartTime = %v, want %v", items[0].StartTime, want)
	}
}

func TestPictureListFromBytesRejectsBadFlag(t *testing.T) {
	buf := make([]byte, pictureListItemLen)
	binary.LittleEndian.PutUint32(buf[0:4], 0)
	_, err := PictureListFromBytes(buf)
	var lerr *Error
	if !asError(err, &lerr) || lerr.Kind != KindProtocol {
		t.Fatalf("expected KindProtocol, got %v", err)
	}
}

func TestPictureListFromBytesDecodesEntries(t *testing.T) {
	buf := make([]byte, pictureListItemLen)
	binary.LittleEndian.PutUint32(buf[0:4], 1)
	binary.LittleEndian.PutUint32(buf[4:8], 54321)
	copy(buf[24:124], "/sdcard/pic/0001.jpg")

	items, err := PictureListFromBytes(buf)
	if err != nil {
		t.Fatalf("PictureListFromBytes: %v", err)
	}
	if len(items) != 1 || items[0].Size != 54321 || items[0].Path != "/sdcard/pic/0001.jpg" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestPictureFromBytesSplitsHeaderAndJPEG(t *testing.T) {
	jpeg := []byte{0xff, 0xd8, 0xff, 0xd9}
	buf := make([]byte, pictureHeaderLen+len(jpeg))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(jpeg)))
	binary.LittleEndian.PutUint32(buf[4:8], 12345)
	copy(buf[12:112], "/sdcard/pic/0002.jpg")
	copy(buf[pictureHeaderLen:], jpeg)

	p, err := PictureFromBytes(buf)
	if err != nil {
		t.Fatalf("PictureFromBytes: %v", err)
	}
	if p.TimeMS != 12345 || p.Path != "/sdcard/pic/0002.jpg" || string(p.JPEG) != string(jpeg) {
		t.Fatalf("unexpected picture: %+v", p)
	}
}

func TestPictureFromBytesRejectsSizeMismatch(t *testing.T) {
	buf := make([]byte, pictureHeaderLen+4)
	binary.LittleEndian.PutUint32(buf[0:4], 99) // declared size doesn't match actual trailing bytes
	if _, err := PictureFromBytes(buf); err == nil {
		t.Fatal("expected error for size mismatch")
	}
}

func TestFileFrameFromBytesParsesEndFrame(t *testing.T) {
	payload := []byte("chunk-of-file-data")
	buf := make([]byte, fileFrameHeaderLen+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(FileFrameEnd))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(payload)))
	binary.LittleEndian.PutUint32(buf[8:12], 1024)
	copy(buf[16:116], "/sdcard/rec/0001.h264")
	copy(buf[116:148], "d41d8cd98f00b204e9800998ecf8427e")
	copy(buf[fileFrameHeaderLen:], payload)

	ff, err := FileFrameFromBytes(buf)
	if err != nil {
		t.Fatalf("FileFrameFromBytes: %v", err)
	}
	if ff.Flag != FileFrameEnd || ff.TotSize != 1024 || ff.MD5Hex != "d41d8cd98f00b204e9800998ecf8427e" {
		t.Fatalf("unexpected frame: %+v", ff)
	}
	if string(ff.Payload) != string(payload) {
		t.Fatalf("payload mismatch: got %q, want %q", ff.Payload, payload)
	}
}

func TestFileFrameFromBytesRejectsSizeMismatch(t *testing.T) {
	buf := make([]byte, fileFrameHeaderLen+4)
	binary.LittleEndian.PutUint32(buf[4:8], 99)
	if _, err := FileFrameFromBytes(buf); err == nil {
		t.Fatal("expected error for size mismatch")
	}
}

func TestVideoFrameFromBytesParsesSubheaderAndData(t *testing.T) {
	data := []byte{0x00, 0x00, 0x00, 0x01, 0x67, 0x42, 0x00}
	buf := make([]byte, videoFrameSubheaderLen+len(data))
	binary.LittleEndian.PutUint32(buf[0:4], 1)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(data)))
	binary.LittleEndian.PutUint64(buf[8:16], 42)
	binary.LittleEndian.PutUint32(buf[16:20], 0)
	copy(buf[videoFrameSubheaderLen:], data)

	vf, err := VideoFrameFromBytes(buf)
	if err != nil {
		t.Fatalf("VideoFrameFromBytes: %v", err)
	}
	if vf.Count != 42 || string(vf.Data) != string(data) {
		t.Fatalf("unexpected frame: %+v", vf)
	}
}

func TestReplayFrameFromBytesSplitsLeadingPair(t *testing.T) {
	h264 := []byte{0x00, 0x00, 0x00, 0x01, 0x65}
	inner := make([]byte, 8+len(h264))
	binary.LittleEndian.PutUint32(inner[0:4], 7)  // frame_num
	binary.LittleEndian.PutUint32(inner[4:8], 99) // count2
	copy(inner[8:], h264)

	buf := make([]byte, videoFrameSubheaderLen+len(inner))
	binary.LittleEndian.PutUint32(buf[0:4], 2)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(inner)))
	binary.LittleEndian.PutUint64(buf[8:16], 1000)
	copy(buf[videoFrameSubheaderLen:], inner)

	rf, err := ReplayFrameFromBytes(buf)
	if err != nil {
		t.Fatalf("ReplayFrameFromBytes: %v", err)
	}
	if rf.FrameNum != 7 || rf.Count2 != 99 || string(rf.Data) != string(h264) {
		t.Fatalf("unexpected replay frame: %+v", rf)
	}
}

func TestCstrDecodeTruncatesAtNUL(t *testing.T) {
	buf := make([]byte, 16)
	copy(buf, "abc")
	if got := cstrDecode(buf); got != "abc" {
		t.Fatalf("cstrDecode = %q, want %q", got, "abc")
	}
}

func TestCstrEncodeZeroPadsAndTruncates(t *testing.T) {
	b := cstrEncode("hi", 5)
	if len(b) != 5 || string(b[:2]) != "hi" || b[2] != 0 {
		t.Fatalf("cstrEncode = % x", b)
	}
	b = cstrEncode("toolong", 3)
	if len(b) != 3 || string(b) != "too" {
		t.Fatalf("cstrEncode truncation = %q", b)
	}
}
