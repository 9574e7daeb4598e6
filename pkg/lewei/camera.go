package lewei

import (
	"encoding/binary"
	"io"
	"net"
	"strconv"
	"time"
)

// Camera is a handle to one lewei_cam device. Non-streaming operations
// open a fresh connection per call; streaming operations share the
// instance's streamState so only one stream can be active at a time.
type Camera struct {
	IP       string
	opts     Options
	streamSt streamState
}

// NewCamera returns a Camera bound to ip, applying default ports and
// timeouts for any zero-valued Options field.
func NewCamera(ip string, opts Options) *Camera {
	return &Camera{IP: ip, opts: opts.withDefaults()}
}

func (c *Camera) cmdAddr() string    { return net.JoinHostPort(c.IP, strconv.Itoa(c.opts.CmdPort)) }
func (c *Camera) streamAddr() string { return net.JoinHostPort(c.IP, strconv.Itoa(c.opts.StreamPort)) }

func (c *Camera) send(cmd *Command) (*Command, error) {
	return SendCmd(c.cmdAddr(), cmd, c.opts)
}

// checkMutatorResult enforces arg1 == 0 ⇒ success for mutator commands.
func checkMutatorResult(resp *Command) error {
	if resp.Arg1() != 0 {
		return newProtoErr("mutator returned nonzero arg1", int64(resp.Arg1()))
	}
	return nil
}

// Heartbeat issues a single heartbeat RPC and returns the decoded status.
func (c *Camera) Heartbeat() (*Heartbeat, error) {
	resp, err := c.send(NewCommand(CmdHeartbeat, nil))
	if err != nil {
		return nil, err
	}
	return HeartbeatFromBytes(resp.Body)
}

// GetTime returns the camera's current UTC time.
func (c *Camera) GetTime() (time.Time, error) {
	resp, err := c.send(NewCommand(CmdGetTime, nil))
	if err != nil {
		return time.Time{}, err
	}
	return gmt8ToUTC(uint64(resp.Arg1())), nil
}

// SetTime pushes t to the camera, re-anchoring it to the device's
// GMT+8-labeled clock.
func (c *Camera) SetTime(t time.Time) error {
	cmd := NewCommand(CmdSetTime, nil)
	cmd.Args[ArgArg1] = uint32(t.UTC().Add(8 * time.Hour).Unix())
	resp, err := c.send(cmd)
	if err != nil {
		return err
	}
	return checkMutatorResult(resp)
}

// GetBaudrate returns the camera's configured serial baud rate.
func (c *Camera) GetBaudrate() (uint32, error) {
	resp, err := c.send(NewCommand(CmdGetBaudrate, nil))
	if err != nil {
		return 0, err
	}
	return resp.Arg1(), nil
}

// SetBaudrate sets the camera's serial baud rate.
func (c *Camera) SetBaudrate(rate uint32) error {
	cmd := NewCommand(CmdSetBaudrate, nil)
	cmd.Args[ArgArg1] = rate
	resp, err := c.send(cmd)
	if err != nil {
		return err
	}
	return checkMutatorResult(resp)
}

// GetCamFlip returns the camera's current image orientation.
func (c *Camera) GetCamFlip() (CameraFlip, error) {
	resp, err := c.send(NewCommand(CmdGetCamFlip, nil))
	if err != nil {
		return 0, err
	}
	return CameraFlip(resp.Arg1()), nil
}

// SetCamFlip sets the camera's image orientation.
func (c *Camera) SetCamFlip(flip CameraFlip) error {
	cmd := NewCommand(CmdSetCamFlip, nil)
	cmd.Args[ArgArg1] = uint32(flip)
	resp, err := c.send(cmd)
	if err != nil {
		return err
	}
	return checkMutatorResult(resp)
}

// GetConfig retrieves the camera's full configuration record.
func (c *Camera) GetConfig() (*Config, error) {
	resp, err := c.send(NewCommand(CmdGetConfig, nil))
	if err != nil {
		return nil, err
	}
	return ConfigFromBytes(resp.Body)
}

// SetConfig writes back cfg's writable fields. Callers should obtain cfg
// via GetConfig first so the server-owned fields round-trip unchanged.
func (c *Camera) SetConfig(cfg *Config) error {
	resp, err := c.send(NewCommand(CmdSetConfig, cfg.ToBytes()))
	if err != nil {
		return err
	}
	return checkMutatorResult(resp)
}

// SetWiFiPassword sets the access point password. password must be at
// most 32 bytes of UTF-8.
func (c *Camera) SetWiFiPassword(password string) error {
	if len(password) > 32 {
		return newErr(KindInvalidArgument, "wifi password exceeds 32 bytes", nil)
	}
	body := make([]byte, 65)
	copy(body[1:], cstrEncode(password, 64))
	resp, err := c.send(NewCommand(CmdSetWifiPass, body))
	if err != nil {
		return err
	}
	return checkMutatorResult(resp)
}

// SetWiFiName sets the access point SSID.
func (c *Camera) SetWiFiName(name string) error {
	if len(name) > 32 {
		return newErr(KindInvalidArgument, "wifi name exceeds 32 bytes", nil)
	}
	resp, err := c.send(NewCommand(CmdSetWifiName, cstrEncode(name, 32)))
	if err != nil {
		return err
	}
	return checkMutatorResult(resp)
}

// SetWiFiChannel sets the access point channel, 1..13.
func (c *Camera) SetWiFiChannel(channel uint32) error {
	if channel < 1 || channel > 13 {
		return newErr(KindInvalidArgument, "wifi channel out of range [1,13]", nil)
	}
	cmd := NewCommand(CmdSetWifiChan, nil)
	cmd.Args[ArgArg1] = channel
	resp, err := c.send(cmd)
	if err != nil {
		return err
	}
	return checkMutatorResult(resp)
}

// RestartWiFi restarts the access point radio.
func (c *Camera) RestartWiFi() error {
	resp, err := c.send(NewCommand(CmdRestartWifi, nil))
	if err != nil {
		return err
	}
	return checkMutatorResult(resp)
}

// SetWiFiDefaults resets the access point configuration to factory
// defaults.
func (c *Camera) SetWiFiDefaults() error {
	resp, err := c.send(NewCommand(CmdSetWifiDefs, nil))
	if err != nil {
		return err
	}
	return checkMutatorResult(resp)
}

// ReformatSD reformats the camera's SD card.
func (c *Camera) ReformatSD() error {
	resp, err := c.send(NewCommand(CmdReformatSD, nil))
	if err != nil {
		return err
	}
	return checkMutatorResult(resp)
}

// GetRecordRotateDuration returns the recording file-rotation interval.
func (c *Camera) GetRecordRotateDuration() (time.Duration, error) {
	resp, err := c.send(NewCommand(CmdGetRecTime, nil))
	if err != nil {
		return 0, err
	}
	return time.Duration(resp.Arg1()) * 60 * time.Second, nil
}

// SetRecordRotateDuration sets the recording file-rotation interval;
// t must be in [60s, 600s].
func (c *Camera) SetRecordRotateDuration(t time.Duration) error {
	secs := t.Seconds()
	if secs < 60 || secs > 600 {
		return newErr(KindInvalidArgument, "record rotate duration out of range [60s,600s]", nil)
	}
	cmd := NewCommand(CmdSetRecTime, nil)
	cmd.Args[ArgArg1] = uint32(secs) / 60
	resp, err := c.send(cmd)
	if err != nil {
		return err
	}
	return checkMutatorResult(resp)
}

// GetRecordPlan returns the active recording schedule.
func (c *Camera) GetRecordPlan() (*RecordPlan, error) {
	resp, err := c.send(NewCommand(CmdGetRecPlan, nil))
	if err != nil {
		return nil, err
	}
	return RecordPlanFromBytes(resp.Body)
}

// SetRecordPlan sets the recording schedule.
func (c *Camera) SetRecordPlan(p *RecordPlan) error {
	resp, err := c.send(NewCommand(CmdSetRecPlan, p.ToBytes()))
	if err != nil {
		return err
	}
	return checkMutatorResult(resp)
}

// Get1080p reports whether the camera is currently in 1080p mode
// (false means 720p).
func (c *Camera) Get1080p() (bool, error) {
	resp, err := c.send(NewCommand(CmdGet1080p, nil))
	if err != nil {
		return false, err
	}
	return resp.Arg1() != 0, nil
}

// Set1080p switches between 1080p and 720p capture resolution.
func (c *Camera) Set1080p(enabled bool) error {
	cmd := NewCommand(CmdSet1080p, nil)
	if enabled {
		cmd.Args[ArgArg1] = 1
	}
	resp, err := c.send(cmd)
	if err != nil {
		return err
	}
	return checkMutatorResult(resp)
}

// GetRecordList lists stored recordings, newest entries per the
// camera's own ordering.
func (c *Camera) GetRecordList() ([]RecordListItem, error) {
	resp, err := c.send(NewCommand(CmdGetRecList, nil))
	if err != nil {
		return nil, err
	}
	return RecordListFromBytes(resp.Body)
}

// GetRecordings fetches the replay-capable recordings list: channel 1,
// type 1, at most 255 entries, up to ten years in the future.
func (c *Camera) GetRecordings() ([]RecordListItem, error) {
	body := make([]byte, 20)
	binary.LittleEndian.PutUint32(body[0:4], 1)    // channel
	binary.LittleEndian.PutUint32(body[4:8], 1)    // type
	binary.LittleEndian.PutUint32(body[8:12], 255) // max
	maxDate := time.Now().AddDate(10, 0, 0).Unix()
	binary.LittleEndian.PutUint32(body[12:16], uint32(maxDate))
	binary.LittleEndian.PutUint32(body[16:20], 0)

	resp, err := c.send(NewCommand(CmdGetRecList, body))
	if err != nil {
		return nil, err
	}
	return RecordListFromBytes(resp.Body)
}

// DeleteFile deletes a file by path (recording or picture).
func (c *Camera) DeleteFile(path string) error {
	resp, err := c.send(NewCommand(CmdDelFile, cstrEncode(path, 100)))
	if err != nil {
		return err
	}
	return checkMutatorResult(resp)
}

// GetPictureList lists stored pictures.
func (c *Camera) GetPictureList() ([]PictureListItem, error) {
	resp, err := c.send(NewCommand(CmdGetPicList, nil))
	if err != nil {
		return nil, err
	}
	return PictureListFromBytes(resp.Body)
}

// ListPictures2 lists up to n stored pictures via the newer listing
// command; n must be in [0, 512].
func (c *Camera) ListPictures2(n uint32) ([]PictureListItem, error) {
	if n > 512 {
		return nil, newErr(KindInvalidArgument, "picture list count exceeds 512", nil)
	}
	cmd := NewCommand(CmdGetPicList2, nil)
	cmd.Args[ArgArg1] = n
	resp, err := c.send(cmd)
	if err != nil {
		return nil, err
	}
	return PictureListFromBytes(resp.Body)
}

// TakePicture captures a still and returns it inline.
func (c *Camera) TakePicture() (*Picture, error) {
	resp, err := c.send(NewCommand(CmdTakePic, nil))
	if err != nil {
		return nil, err
	}
	return PictureFromBytes(resp.Body)
}

// TakePicture2 captures a still via the newer capture command.
func (c *Camera) TakePicture2() (*Picture, error) {
	resp, err := c.send(NewCommand(CmdTakePic2, nil))
	if err != nil {
		return nil, err
	}
	return PictureFromBytes(resp.Body)
}

// StartVideoStream begins a live video stream. lowDef requests the
// camera's reduced-bitrate encoding via arg1; frames are unmunged and
// delivered on the returned channel until the stream ends or the
// returned stop function (or StopStream) is called. A concurrent call while a stream is already active returns an
// already-closed channel, per the single-stream-per-instance invariant.
func (c *Camera) StartVideoStream(lowDef bool) (<-chan VideoFrameMsg, func(), error) {
	cmd := NewCommand(CmdStartStream, nil)
	if lowDef {
		cmd.Args[ArgArg1] = 1
	}
	return StartVideoStream(c.streamAddr(), cmd, &c.streamSt, c.opts)
}

// StartReplayStream begins playback of the recording at the given index
// in a fresh GetRecordings listing.
func (c *Camera) StartReplayStream(index int) (<-chan ReplayFrameMsg, func(), error) {
	items, err := c.GetRecordings()
	if err != nil {
		return nil, nil, err
	}
	if index < 0 || index >= len(items) {
		return nil, nil, newErr(KindInvalidArgument, "replay index out of range", nil)
	}
	item := items[index]

	body := make([]byte, 4+4+16+100)
	start := uint32(item.StartTime.Add(8 * time.Hour).Unix())
	binary.LittleEndian.PutUint32(body[0:4], start)
	binary.LittleEndian.PutUint32(body[4:8], start+item.TimeLen)
	copy(body[24:], cstrEncode(item.Path, 100))

	cmd := NewCommand(CmdStartReplay, body)
	return StartReplayStream(c.streamAddr(), cmd, &c.streamSt, c.opts)
}

// StopStream cancels any active stream on this Camera instance.
func (c *Camera) StopStream() {
	c.streamSt.stop()
}

// DownloadFile fetches path from the camera's stream port and writes its
// bytes to sink, returning whether the transfer's MD5 verified.
func (c *Camera) DownloadFile(path string, sink io.Writer) (bool, error) {
	cmd := NewCommand(CmdGetFile, cstrEncode(path, 100))
	return DownloadFile(c.streamAddr(), cmd, sink, &c.streamSt, c.opts)
}
