package synth

import (
	"bytes"
	"encoding/binary"
	"strings"
	"time"
)

// Frame is one header-plus-payload unit of the synthesis wire protocol.
// Text frames separate the header block from the payload with a blank line;
// binary frames prefix the header block with its big-endian length.
type Frame struct {
	Headers map[string]string
	Payload []byte
}

// Path returns the frame's logical path header.
func (f Frame) Path() string {
	return f.Headers["Path"]
}

const headerSeparator = "\r\n\r\n"

// requestFrame renders an outgoing text frame. The header order and the
// exact \r\n framing are part of the wire contract.
func requestFrame(requestID, contentType, timestamp, path, payload string) string {
	var b strings.Builder
	b.WriteString("X-RequestId:" + requestID + "\r\n")
	b.WriteString("Content-Type:" + contentType + "\r\n")
	b.WriteString("X-Timestamp:" + timestamp + "Z\r\n")
	b.WriteString("Path:" + path + headerSeparator)
	b.WriteString(payload)
	return b.String()
}

// parseTextFrame splits an incoming text frame on the first blank line.
func parseTextFrame(data []byte) (Frame, bool) {
	sep := bytes.Index(data, []byte(headerSeparator))
	if sep < 0 {
		return Frame{}, false
	}
	return Frame{
		Headers: parseHeaders(data[:sep]),
		Payload: data[sep+len(headerSeparator):],
	}, true
}

// parseBinaryFrame reads the two-byte header length prefix used by binary
// frames carrying audio payloads.
func parseBinaryFrame(data []byte) (Frame, bool) {
	if len(data) < 2 {
		return Frame{}, false
	}
	headerLen := int(binary.BigEndian.Uint16(data[:2]))
	if 2+headerLen > len(data) {
		return Frame{}, false
	}
	return Frame{
		Headers: parseHeaders(data[2 : 2+headerLen]),
		Payload: data[2+headerLen:],
	}, true
}

func parseHeaders(block []byte) map[string]string {
	headers := make(map[string]string)
	for _, line := range bytes.Split(block, []byte("\r\n")) {
		key, value, ok := bytes.Cut(line, []byte(":"))
		if !ok {
			continue
		}
		headers[string(key)] = string(value)
	}
	return headers
}

// timestamp renders the endpoint's expected date format. The trailing Z is
// appended by requestFrame.
func timestamp() string {
	return time.Now().UTC().Format("Mon Jan 02 2006 15:04:05 GMT+0000 (Coordinated Universal Time)")
}
