package lewei

import (
	"bytes"
	"testing"
)

func TestCommandEncodeHeartbeat(t *testing.T) {
	c := NewCommand(CmdHeartbeat, nil)
	got := c.Encode()

	if len(got) != 46 {
		t.Fatalf("encoded length = %d, want 46", len(got))
	}

	want := append([]byte{}, hdrMagic...)
	want = append(want, 0x01, 0x00, 0x00, 0x00)
	want = append(want, make([]byte, 32)...)

	if !bytes.Equal(got, want) {
		t.Fatalf("encoded bytes mismatch:\n got  % x\n want % x", got, want)
	}
}

func TestCommandDecodeEncodeRoundTrip(t *testing.T) {
	cases := []*Command{
		NewCommand(CmdHeartbeat, nil),
		NewCommand(CmdSetBaudrate, nil),
		func() *Command {
			c := NewCommand(CmdTakePic2, []byte("hello world"))
			c.Args[ArgArg1] = 1
			return c
		}(),
	}

	for _, c := range cases {
		encoded := c.Encode()
		decoded, err := DecodeHeader(encoded[:HeaderLen])
		if err != nil {
			t.Fatalf("DecodeHeader: %v", err)
		}
		decoded.SetBody(encoded[HeaderLen:])

		if decoded.Type != c.Type || decoded.Args != c.Args || !bytes.Equal(decoded.Body, c.Body) {
			t.Fatalf("round trip mismatch: got %+v, want %+v", decoded, c)
		}
	}
}

func TestDecodeHeaderRejectsBadMagic(t *testing.T) {
	buf := make([]byte, HeaderLen)
	copy(buf, "not-magic!")
	_, err := DecodeHeader(buf)
	if err == nil {
		t.Fatal("expected error for bad magic")
	}
	var lerr *Error
	if !asError(err, &lerr) || lerr.Kind != KindFraming {
		t.Fatalf("expected KindFraming, got %v", err)
	}
}

func TestDecodeHeaderRejectsShortBuffer(t *testing.T) {
	_, err := DecodeHeader(make([]byte, HeaderLen-1))
	if err == nil {
		t.Fatal("expected error for short header")
	}
}

func TestDecodeHeaderRejectsUnknownCmdType(t *testing.T) {
	c := NewCommand(CommandType(9999), nil)
	_, err := DecodeHeader(c.Encode()[:HeaderLen])
	if err == nil {
		t.Fatal("expected error for unknown cmd_type")
	}
	var lerr *Error
	if !asError(err, &lerr) || lerr.Kind != KindUnsupported {
		t.Fatalf("expected KindUnsupported, got %v", err)
	}
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
