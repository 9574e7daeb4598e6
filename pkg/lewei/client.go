package lewei

import (
	"io"
	"net"
	"time"
)

// SendCmd opens a fresh TCP connection to addr, writes cmd's encoded form,
// reads back the 46-byte header and declared body, then closes the
// connection. The client never retries the request itself; callers that
// want retry semantics wrap SendCmd.
func SendCmd(addr string, cmd *Command, opts Options) (*Command, error) {
	o := opts.withDefaults()

	conn, err := net.DialTimeout("tcp", addr, o.ConnectTimeout)
	if err != nil {
		return nil, newErr(KindNetwork, "dial "+addr, err)
	}
	defer conn.Close()

	tuneConn(conn)

	if err := conn.SetWriteDeadline(time.Now().Add(o.RPCReadTimeout)); err != nil {
		return nil, newErr(KindNetwork, "set write deadline", err)
	}
	if _, err := conn.Write(cmd.Encode()); err != nil {
		return nil, newErr(KindNetwork, "write command", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(o.RPCReadTimeout)); err != nil {
		return nil, newErr(KindNetwork, "set read deadline", err)
	}

	hdr := make([]byte, HeaderLen)
	if err := readFull(conn, hdr); err != nil {
		return nil, err
	}
	resp, err := DecodeHeader(hdr)
	if err != nil {
		return nil, err
	}

	if n := resp.BodySize(); n > 0 {
		body := make([]byte, n)
		if err := readFull(conn, body); err != nil {
			return nil, err
		}
		resp.SetBody(body)
	}

	return resp, nil
}

// readFull reads len(buf) bytes from r, retrying on short reads until the
// buffer is full or an error or EOF is hit. A short EOF is reported as a
// network error; the device never half-closes mid-response.
func readFull(r io.Reader, buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			if err == io.EOF {
				if total == len(buf) {
					return nil
				}
				return newErr(KindNetwork, "short read before EOF", err)
			}
			return newErr(KindNetwork, "read", err)
		}
	}
	return nil
}
