package lewei

import (
	"net"
	"testing"
	"time"
)

func TestSendCmdRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		hdr := make([]byte, HeaderLen)
		if err := readFull(conn, hdr); err != nil {
			return
		}
		req, err := DecodeHeader(hdr)
		if err != nil {
			return
		}
		if n := req.BodySize(); n > 0 {
			body := make([]byte, n)
			_ = readFull(conn, body)
			req.SetBody(body)
		}

		resp := NewCommand(CmdGetTime, []byte("ok"))
		resp.Args[ArgArg1] = 1
		_, _ = conn.Write(resp.Encode())
	}()

	cmd := NewCommand(CmdGetTime, nil)
	resp, err := SendCmd(ln.Addr().String(), cmd, Options{})
	if err != nil {
		t.Fatalf("SendCmd: %v", err)
	}
	if resp.Type != CmdGetTime || resp.Arg1() != 1 || string(resp.Body) != "ok" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSendCmdDialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close() // nothing listening now

	_, err = SendCmd(addr, NewCommand(CmdHeartbeat, nil), Options{ConnectTimeout: time.Second})
	if err == nil {
		t.Fatal("expected dial failure")
	}
	var lerr *Error
	if !asError(err, &lerr) || lerr.Kind != KindNetwork {
		t.Fatalf("expected KindNetwork, got %v", err)
	}
}

func TestSendCmdRejectsBadMagic(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		junk := make([]byte, HeaderLen)
		copy(junk, "garbage!!!")
		_, _ = conn.Write(junk)
	}()

	_, err = SendCmd(ln.Addr().String(), NewCommand(CmdHeartbeat, nil), Options{})
	if err == nil {
		t.Fatal("expected framing error")
	}
	var lerr *Error
	if !asError(err, &lerr) || lerr.Kind != KindFraming {
		t.Fatalf("expected KindFraming, got %v", err)
	}
}

func TestSendCmdShortResponseIsNetworkError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = conn.Write(make([]byte, HeaderLen-1))
	}()

	_, err = SendCmd(ln.Addr().String(), NewCommand(CmdHeartbeat, nil), Options{})
	if err == nil {
		t.Fatal("expected network error on short response")
	}
	var lerr *Error
	if !asError(err, &lerr) || lerr.Kind != KindNetwork {
		t.Fatalf("expected KindNetwork, got %v", err)
	}
}
