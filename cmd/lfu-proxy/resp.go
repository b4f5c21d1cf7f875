package main

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
)

var errInvalidProtocol = errors.New("ERR protocol error")

const crlf = "\r\n"

// Default limits on a single command. Lengths are checked before anything
// is allocated for them.
const (
	maxArgs         = 1024
	maxBulkLen      = 64 << 20
	maxCommandBytes = 128 << 20
)

// RESPReader parses RESP commands from a bufio.Reader. Inline commands are
// split on spaces.
type RESPReader struct {
	rd *bufio.Reader

	maxBulk  int // largest single argument
	maxTotal int // sum of argument lengths in one command
}

func NewRESPReader(rd *bufio.Reader) *RESPReader {
	return &RESPReader{rd: rd, maxBulk: maxBulkLen, maxTotal: maxCommandBytes}
}

func (r *RESPReader) ReadCommand() ([][]byte, error) {
	line, err := r.rd.ReadSlice('\n')
	if err != nil {
		return nil, err
	}

	if len(line) < 2 || line[len(line)-2] != '\r' {
		return nil, errInvalidProtocol
	}

	if line[0] != '*' {
		// line aliases the read buffer.
		return bytes.Fields(bytes.Clone(line[:len(line)-2])), nil
	}

	countStr := string(line[1 : len(line)-2])
	count, err := strconv.Atoi(countStr)
	if err != nil || count < 0 || count > maxArgs {
		return nil, errInvalidProtocol
	}

	args := make([][]byte, 0, count)
	total := 0

	for i := 0; i < count; i++ {
		line, err = r.rd.ReadSlice('\n')
		if err != nil {
			return nil, err
		}
		if len(line) < 4 || line[0] != '$' {
			return nil, errInvalidProtocol
		}

		lenStr := string(line[1 : len(line)-2])
		length, err := strconv.Atoi(lenStr)
		if err != nil || length < -1 || length > r.maxBulk {
			return nil, errInvalidProtocol
		}
		total += max(length, 0)
		if total > r.maxTotal {
			return nil, errInvalidProtocol
		}

		if length == -1 {
			args = append(args, nil)
			continue
		}

		data := make([]byte, length)
		_, err = io.ReadFull(r.rd, data)
		if err != nil {
			return nil, err
		}

		_, err = r.rd.Discard(2)
		if err != nil {
			return nil, err
		}

		args = append(args, data)
	}

	return args, nil
}

// RESPWriter handles writing RESP responses without fmt.
type RESPWriter struct {
	wr      *bufio.Writer
	scratch []byte // reused buffer for integer formatting
}

func NewRESPWriter(wr *bufio.Writer) *RESPWriter {
	return &RESPWriter{
		wr:      wr,
		scratch: make([]byte, 0, 32),
	}
}

// WriteError writes msg as a RESP error. msg should start with an error
// prefix such as ERR.
func (w *RESPWriter) WriteError(msg string) {
	w.wr.WriteByte('-')
	w.wr.WriteString(msg)
	w.wr.WriteString(crlf)
}

func (w *RESPWriter) WriteSimpleString(msg string) {
	w.wr.WriteByte('+')
	w.wr.WriteString(msg)
	w.wr.WriteString(crlf)
}

func (w *RESPWriter) WriteBulk(data []byte) {
	w.wr.WriteByte('$')
	w.scratch = w.scratch[:0]
	w.scratch = strconv.AppendInt(w.scratch, int64(len(data)), 10)
	w.wr.Write(w.scratch)
	w.wr.WriteString(crlf)
	w.wr.Write(data)
	w.wr.WriteString(crlf)
}

func (w *RESPWriter) WriteNull() {
	w.wr.WriteString("$-1" + crlf)
}

func (w *RESPWriter) WriteInt(n int64) {
	w.wr.WriteByte(':')
	w.scratch = w.scratch[:0]
	w.scratch = strconv.AppendInt(w.scratch, n, 10)
	w.wr.Write(w.scratch)
	w.wr.WriteString(crlf)
}

func (w *RESPWriter) Flush() error {
	return w.wr.Flush()
}
