package lewei

import (
	"net"
	"testing"
)

// mockCameraServer runs a single-shot accept loop invoking handle for each
// connection, returning a Camera bound to the listener's address.
func mockCameraServer(t *testing.T, handle func(conn net.Conn)) *Camera {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go handle(conn)
		}
	}()

	addr := ln.Addr().(*net.TCPAddr)
	return NewCamera(addr.IP.String(), Options{CmdPort: addr.Port, StreamPort: addr.Port})
}

func readReq(conn net.Conn) (*Command, error) {
	hdr := make([]byte, HeaderLen)
	if err := readFull(conn, hdr); err != nil {
		return nil, err
	}
	req, err := DecodeHeader(hdr)
	if err != nil {
		return nil, err
	}
	if n := req.BodySize(); n > 0 {
		body := make([]byte, n)
		if err := readFull(conn, body); err != nil {
			return nil, err
		}
		req.SetBody(body)
	}
	return req, nil
}

func TestCameraSetWiFiPasswordRejectsTooLong(t *testing.T) {
	cam := NewCamera("127.0.0.1", Options{})
	err := cam.SetWiFiPassword(string(make([]byte, 33, 33)))
	var lerr *Error
	if !asError(err, &lerr) || lerr.Kind != KindInvalidArgument {
		t.Fatalf("expected KindInvalidArgument, got %v", err)
	}
}

func TestCameraSetWiFiChannelValidatesRange(t *testing.T) {
	cam := NewCamera("127.0.0.1", Options{})
	if err := cam.SetWiFiChannel(0); err == nil {
		t.Fatal("expected error for channel 0")
	}
	if err := cam.SetWiFiChannel(14); err == nil {
		t.Fatal("expected error for channel 14")
	}
}

func TestCameraSetRecordRotateDurationValidatesRange(t *testing.T) {
	cam := NewCamera("127.0.0.1", Options{})
	if err := cam.SetRecordRotateDuration(59e9); err == nil {
		t.Fatal("expected error for duration below 60s")
	}
}

func TestCameraListPictures2ValidatesBound(t *testing.T) {
	cam := NewCamera("127.0.0.1", Options{})
	if _, err := cam.ListPictures2(513); err == nil {
		t.Fatal("expected error for count above 512")
	}
}

func TestCameraHeartbeatRoundTrip(t *testing.T) {
	cam := mockCameraServer(t, func(conn net.Conn) {
		defer conn.Close()
		req, err := readReq(conn)
		if err != nil || req.Type != CmdHeartbeat {
			return
		}
		hb := make([]byte, heartbeatLen)
		hb[0] = 1
		resp := NewCommand(CmdHeartbeat, hb)
		_, _ = conn.Write(resp.Encode())
	})

	hb, err := cam.Heartbeat()
	if err != nil {
		t.Fatalf("Heartbeat: %v", err)
	}
	if !hb.Mounted {
		t.Fatalf("unexpected heartbeat: %+v", hb)
	}
}

func TestCameraSetCamFlipRejectsNonzeroArg1(t *testing.T) {
	cam := mockCameraServer(t, func(conn net.Conn) {
		defer conn.Close()
		req, err := readReq(conn)
		if err != nil || req.Type != CmdSetCamFlip {
			return
		}
		resp := NewCommand(CmdSetCamFlip, nil)
		resp.Args[ArgArg1] = 7
		_, _ = conn.Write(resp.Encode())
	})

	err := cam.SetCamFlip(FlipDown)
	var lerr *Error
	if !asError(err, &lerr) || lerr.Kind != KindProtocol || lerr.Code != 7 {
		t.Fatalf("expected KindProtocol code 7, got %v", err)
	}
}
