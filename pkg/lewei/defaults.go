package lewei

import "time"

// Defaults for a lewei_cam camera reachable on the local network, per the
// device's factory WiFi access-point configuration.
const (
	DefaultCamIP      = "192.168.0.1"
	DefaultCmdPort    = 7060
	DefaultStreamPort = 8060
)

// Timeouts applied by the command client and the stream session engine.
const (
	ConnectTimeout    = 15 * time.Second
	RPCReadTimeout    = 15 * time.Second
	StreamReadTimeout = 1 * time.Second

	// StreamHeartbeatPeriod is the minimum interval between heartbeats the
	// client sends back on an open stream socket.
	StreamHeartbeatPeriod = 1 * time.Second
)

// Options overrides the connection parameters a Camera uses. A zero value
// for any field falls back to the corresponding default.
type Options struct {
	CmdPort           int
	StreamPort        int
	ConnectTimeout    time.Duration
	RPCReadTimeout    time.Duration
	StreamReadTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.CmdPort == 0 {
		o.CmdPort = DefaultCmdPort
	}
	if o.StreamPort == 0 {
		o.StreamPort = DefaultStreamPort
	}
	if o.ConnectTimeout == 0 {
		o.ConnectTimeout = ConnectTimeout
	}
	if o.RPCReadTimeout == 0 {
		o.RPCReadTimeout = RPCReadTimeout
	}
	if o.StreamReadTimeout == 0 {
		o.StreamReadTimeout = StreamReadTimeout
	}
	return o
}
