// Package frame implements the request/response wire codec lodis'
// transport speaks: a request body is a sequence of length-prefixed
// parameter frames (len:u32-BE || bytes), and a response body is a
// status byte followed by a payload whose shape depends on the command
// family. Grounded on original_source/src/handler.rs's request parsing
// and response encoding, re-expressed as a streaming reader/writer pair
// in the teacher's style of small, directly-testable codec helpers (see
// pkg/jsonx in the teacher repo).
package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/edirooss/lodis/internal/lodiserr"
)

// ParseParams decodes body into its sequence of parameter frames. Each
// frame is a 4-byte big-endian length followed by that many bytes.
func ParseParams(body []byte) ([][]byte, error) {
	var out [][]byte
	for len(body) > 0 {
		if len(body) < 4 {
			return nil, fmt.Errorf("frame: %w: truncated length prefix", lodiserr.ErrParseFrame)
		}
		n := binary.BigEndian.Uint32(body[:4])
		body = body[4:]
		if uint64(len(body)) < uint64(n) {
			return nil, fmt.Errorf("frame: %w: length runs past body", lodiserr.ErrParseFrame)
		}
		out = append(out, body[:n])
		body = body[n:]
	}
	return out, nil
}

// Status bytes, the first byte of every response body.
const (
	StatusOK uint8 = 0

	statusErrStore          uint8 = 1
	statusErrShapeMismatch  uint8 = 2
	statusErrOutOfRange     uint8 = 3
	statusErrNotNumeric     uint8 = 4
	statusErrParseFrame     uint8 = 5
	statusErrParamMismatch  uint8 = 6
	statusErrParamType      uint8 = 7
	statusErrUnknown        uint8 = 255
)

// StatusFor maps a lodiserr sentinel (or a wrapper around one) to its
// wire status byte.
func StatusFor(err error) uint8 {
	switch {
	case err == nil:
		return StatusOK
	case isErr(err, lodiserr.ErrStore):
		return statusErrStore
	case isErr(err, lodiserr.ErrShapeMismatch):
		return statusErrShapeMismatch
	case isErr(err, lodiserr.ErrOutOfRange):
		return statusErrOutOfRange
	case isErr(err, lodiserr.ErrNotNumeric):
		return statusErrNotNumeric
	case isErr(err, lodiserr.ErrParseFrame):
		return statusErrParseFrame
	case isErr(err, lodiserr.ErrParamMismatch):
		return statusErrParamMismatch
	case isErr(err, lodiserr.ErrParamType):
		return statusErrParamType
	default:
		return statusErrUnknown
	}
}

func isErr(err, target error) bool {
	type unwrapper interface{ Unwrap() error }
	for err != nil {
		if err == target {
			return true
		}
		u, ok := err.(unwrapper)
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Writer builds a response body: a status byte followed by a payload.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with status written as its first byte.
func NewWriter(status uint8) *Writer {
	return &Writer{buf: []byte{status}}
}

// NewPayload returns a Writer with no status byte, for building a
// command's result payload before it is wrapped in a status-prefixed
// response by the caller.
func NewPayload() *Writer {
	return &Writer{}
}

// Bytes returns the built response body.
func (w *Writer) Bytes() []byte { return w.buf }

// WriteFrame appends a single length-prefixed value frame, the payload
// shape for commands that return a single value or a sequence of them.
func (w *Writer) WriteFrame(v []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(v)))
	w.buf = append(w.buf, lenBuf[:]...)
	w.buf = append(w.buf, v...)
}

// WritePairs appends a sequence of key/value frame pairs, the payload
// shape for commands returning key/value pairs (Map.all, ArrayMap.all).
func (w *Writer) WritePairs(pairs [][2][]byte) {
	w.WriteLength(uint32(len(pairs)))
	for _, p := range pairs {
		w.WriteFrame(p[0])
		w.WriteFrame(p[1])
	}
}

// WriteMaybe appends a presence byte (1 if ok, 0 otherwise) followed by
// the value frame when ok is true, the payload shape for commands that
// may or may not have a value to return (pop, get on a missing key).
func (w *Writer) WriteMaybe(v []byte, ok bool) {
	if !ok {
		w.buf = append(w.buf, 0)
		return
	}
	w.buf = append(w.buf, 1)
	w.WriteFrame(v)
}

// WriteLength appends a raw 4-byte big-endian length, the payload shape
// for commands returning a count (Len).
func (w *Writer) WriteLength(n uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], n)
	w.buf = append(w.buf, b[:]...)
}

// WriteValues appends a count followed by each value as its own frame,
// the payload shape for commands returning a sequence of values (List's
// range/all, Map's keys/values).
func (w *Writer) WriteValues(vals [][]byte) {
	w.WriteLength(uint32(len(vals)))
	for _, v := range vals {
		w.WriteFrame(v)
	}
}

// WriteBool appends a single boolean byte, the payload shape for
// commands returning a yes/no (Exists, Setnx, Delete).
func (w *Writer) WriteBool(b bool) {
	if b {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteRaw appends v with no length prefix, for payloads whose shape is
// fixed and known to the caller (e.g. a single already-delimited value).
func (w *Writer) WriteRaw(v []byte) {
	w.buf = append(w.buf, v...)
}
