package lewei

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// streamState holds the per-camera-instance mutable state the stream
// session engine needs: whether a stream is currently active, guarded by
// a mutex so a second concurrent start attempt fails fast instead of
// racing the first.
type streamState struct {
	mu        sync.Mutex
	streaming bool
}

func (s *streamState) tryStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streaming {
		return false
	}
	s.streaming = true
	return true
}

func (s *streamState) stop() {
	s.mu.Lock()
	s.streaming = false
	s.mu.Unlock()
}

func (s *streamState) isStreaming() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming
}

// VideoFrameMsg is one decoded, unmunged frame handed to a live-stream
// consumer.
type VideoFrameMsg struct {
	Frame *VideoFrame
}

// ReplayFrameMsg is one decoded, unmunged frame handed to a replay-stream
// consumer.
type ReplayFrameMsg struct {
	Frame *ReplayFrame
}

// readStreamFrame reads one header+body pair with the given per-read
// deadline. A deadline timeout is reported via net.Error.Timeout() so the
// caller can distinguish "nothing arrived yet, recheck cancellation" from
// a genuine I/O failure.
func readStreamFrame(conn net.Conn, readTimeout time.Duration) (*Command, error) {
	if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
		return nil, newErr(KindNetwork, "set read deadline", err)
	}
	hdr := make([]byte, HeaderLen)
	if err := readFull(conn, hdr); err != nil {
		if ne, ok := errCause(err).(net.Error); ok && ne.Timeout() {
			return nil, ne
		}
		return nil, err
	}
	cmd, err := DecodeHeader(hdr)
	if err != nil {
		return nil, err
	}
	if n := cmd.BodySize(); n > 0 {
		body := make([]byte, n)
		if err := readFull(conn, body); err != nil {
			if ne, ok := errCause(err).(net.Error); ok && ne.Timeout() {
				return nil, ne
			}
			return nil, err
		}
		cmd.SetBody(body)
	}
	return cmd, nil
}

// errCause unwraps an *Error to the underlying cause so callers can type-
// assert against stdlib error interfaces like net.Error.
func errCause(err error) error {
	if lerr, ok := err.(*Error); ok && lerr.Err != nil {
		return lerr.Err
	}
	return err
}

func isTimeout(err error) bool {
	ne, ok := err.(net.Error)
	return ok && ne.Timeout()
}

// StartVideoStream connects to the stream port, sends initialCmd, and
// yields live VideoFrame values on the returned channel until the stream
// ends or is cancelled via the returned stop function. The channel is
// closed when the session is done. A second concurrent call on the same
// state fails fast, per the engine's single-stream-per-instance
// invariant.
func StartVideoStream(addr string, initialCmd *Command, state *streamState, opts Options) (<-chan VideoFrameMsg, func(), error) {
	if !state.tryStart() {
		ch := make(chan VideoFrameMsg)
		close(ch)
		return ch, func() {}, nil
	}

	conn, err := net.DialTimeout("tcp", addr, opts.withDefaults().ConnectTimeout)
	if err != nil {
		state.stop()
		return nil, nil, newErr(KindNetwork, "dial "+addr, err)
	}
	tuneConn(conn)

	if _, err := conn.Write(initialCmd.Encode()); err != nil {
		conn.Close()
		state.stop()
		return nil, nil, newErr(KindNetwork, "write initial command", err)
	}

	out := make(chan VideoFrameMsg, 4)
	go func() {
		defer close(out)
		defer conn.Close()
		defer state.stop()

		o := opts.withDefaults()
		lastHB := time.Now()

		for state.isStreaming() {
			cmd, err := readStreamFrame(conn, o.StreamReadTimeout)
			if err != nil {
				if isTimeout(err) {
					maybeSendHeartbeat(conn, &lastHB)
					continue
				}
				break
			}

			switch cmd.Type {
			case CmdHeartbeat:
				continue
			case CmdRetReplayEnd:
				return
			}

			vf, err := VideoFrameFromBytes(cmd.Body)
			if err != nil {
				break
			}
			u := Unmunger{
				StreamType: cmd.Args[ArgStreamType],
				Key1:       cmd.Args[ArgKey1],
				Key2:       cmd.Args[ArgKey2],
			}
			u.Apply(vf.Data, vf.Count)

			out <- VideoFrameMsg{Frame: vf}
			maybeSendHeartbeat(conn, &lastHB)
		}

		best := NewCommand(CmdStopStream, nil)
		_, _ = conn.Write(best.Encode())
	}()

	stop := func() { state.stop() }
	return out, stop, nil
}

// StartReplayStream is StartVideoStream's counterpart for replay
// playback; its stop command is stopreplay and frames decode via
// ReplayFrameFromBytes.
func StartReplayStream(addr string, initialCmd *Command, state *streamState, opts Options) (<-chan ReplayFrameMsg, func(), error) {
	if !state.tryStart() {
		ch := make(chan ReplayFrameMsg)
		close(ch)
		return ch, func() {}, nil
	}

	conn, err := net.DialTimeout("tcp", addr, opts.withDefaults().ConnectTimeout)
	if err != nil {
		state.stop()
		return nil, nil, newErr(KindNetwork, "dial "+addr, err)
	}
	tuneConn(conn)

	if _, err := conn.Write(initialCmd.Encode()); err != nil {
		conn.Close()
		state.stop()
		return nil, nil, newErr(KindNetwork, "write initial command", err)
	}

	out := make(chan ReplayFrameMsg, 4)
	go func() {
		defer close(out)
		defer conn.Close()
		defer state.stop()

		o := opts.withDefaults()
		lastHB := time.Now()

		for state.isStreaming() {
			cmd, err := readStreamFrame(conn, o.StreamReadTimeout)
			if err != nil {
				if isTimeout(err) {
					maybeSendHeartbeat(conn, &lastHB)
					continue
				}
				break
			}

			switch cmd.Type {
			case CmdHeartbeat:
				continue
			case CmdRetReplayEnd:
				return
			}

			rf, err := ReplayFrameFromBytes(cmd.Body)
			if err != nil {
				break
			}
			u := Unmunger{
				StreamType: cmd.Args[ArgStreamType],
				Key1:       cmd.Args[ArgKey1],
				Key2:       cmd.Args[ArgKey2],
			}
			u.Apply(rf.Data, rf.Count)

			out <- ReplayFrameMsg{Frame: rf}
			maybeSendHeartbeat(conn, &lastHB)
		}

		best := NewCommand(CmdStopReplay, nil)
		_, _ = conn.Write(best.Encode())
	}()

	stop := func() { state.stop() }
	return out, stop, nil
}

func maybeSendHeartbeat(conn net.Conn, lastHB *time.Time) {
	if time.Since(*lastHB) < StreamHeartbeatPeriod {
		return
	}
	hb := NewCommand(CmdHeartbeat, nil)
	if _, err := conn.Write(hb.Encode()); err == nil {
		*lastHB = time.Now()
	}
}

// DownloadFile drives a file-transfer stream: it sends initialCmd (a
// getfile Command), writes each data frame's payload to sink, and
// verifies the terminal frame's MD5 against the bytes actually written.
// Protocol violations short-circuit to (false, nil): a failed transfer
// is a result, not an error, per the core's error-handling design. Of
// the frame flags, notfound is the one reported as an error; network,
// framing and sink-write failures are returned as errors too. File download
// uses the same stream engine as live/replay video, so it shares state's
// single-active-stream invariant: a concurrent call on the same state
// fails fast with KindCancelled rather than racing the active session.
func DownloadFile(addr string, initialCmd *Command, sink io.Writer, state *streamState, opts Options) (bool, error) {
	if !state.tryStart() {
		return false, newErr(KindCancelled, "another stream is already active on this camera", nil)
	}
	defer state.stop()

	o := opts.withDefaults()
	conn, err := net.DialTimeout("tcp", addr, o.ConnectTimeout)
	if err != nil {
		return false, newErr(KindNetwork, "dial "+addr, err)
	}
	defer conn.Close()
	tuneConn(conn)

	if _, err := conn.Write(initialCmd.Encode()); err != nil {
		return false, newErr(KindNetwork, "write initial command", err)
	}

	hasher := md5.New()
	started := false

	for {
		cmd, err := readStreamFrame(conn, o.RPCReadTimeout)
		if err != nil {
			return false, err
		}
		if cmd.Type == CmdHeartbeat {
			continue
		}

		ff, err := FileFrameFromBytes(cmd.Body)
		if err != nil {
			return false, err
		}

		switch ff.Flag {
		case FileFrameNotFound:
			return false, newErr(KindNotFound, "file not found: "+ff.Path, nil)
		case FileFrameStart:
			started = true
		case FileFrameData:
			if !started {
				return false, nil
			}
			if _, err := sink.Write(ff.Payload); err != nil {
				return false, newErr(KindNetwork, "write to sink", err)
			}
			hasher.Write(ff.Payload)
		case FileFrameEnd:
			got := hex.EncodeToString(hasher.Sum(nil))
			return strings.EqualFold(got, ff.MD5Hex), nil
		default:
			return false, nil
		}
	}
}
