package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/ValentinKolb/qnclient/rpc/common"
)

// frameHeaderSize is 1 byte message kind + 4 bytes payload length
const frameHeaderSize = 5

// writeFrame writes a frame to the connection with the format:
// - 1 byte: message kind (common.MessageKind)
// - 4 bytes: data length (uint32, big endian)
// - N bytes: data payload
func writeFrame(conn net.Conn, kind common.MessageKind, data []byte) error {
	header := make([]byte, frameHeaderSize)
	header[0] = byte(kind)
	binary.BigEndian.PutUint32(header[1:5], uint32(len(data)))

	// net.Buffers combines header and payload into one write where possible
	b := net.Buffers{header, data}
	_, err := b.WriteTo(conn)
	return err
}

// readFrame reads one frame from r. Frames larger than limit (if limit > 0) are rejected.
func readFrame(r io.Reader, limit int64) (common.MessageKind, []byte, error) {
	header := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, err
	}

	kind := common.MessageKind(header[0])
	if kind != common.MsgKindText && kind != common.MsgKindBinary {
		return 0, nil, fmt.Errorf("invalid frame kind %d", header[0])
	}

	contentLength := binary.BigEndian.Uint32(header[1:5])
	if limit > 0 && int64(contentLength) > limit {
		return 0, nil, fmt.Errorf("frame of %d bytes exceeds read limit of %d bytes", contentLength, limit)
	}

	// If no data, return empty slice
	if contentLength == 0 {
		return kind, []byte{}, nil
	}

	data := make([]byte, contentLength)
	if _, err := io.ReadFull(r, data); err != nil {
		return 0, nil, err
	}
	return kind, data, nil
}
