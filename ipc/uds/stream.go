package uds

import (
	"fmt"
	"io"

	log "github.com/golang/glog"
)

// Reader is the inbound direction of a Socket. Each read is a single system call: it returns
// as soon as any data is available and never loops to fill the buffer.
type Reader struct {
	s *Socket
}

// ReadRange reads into b[off:off+n]. It returns the number of bytes read, which may be less
// than n. io.EOF is returned when the peer will send no more data.
func (r *Reader) ReadRange(b []byte, off, n int) (int, error) {
	if err := checkRange(b, off, n); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if r.s.Closed() {
		return 0, errClosed("read from", r.s)
	}

	count, err := r.s.p.Read(r.s.handle, b[off:off+n])
	switch {
	case err != nil:
		return 0, fmt.Errorf("%w: unable to read from %s: %w", ErrIO, r.s, err)
	case count < 0 || count > n:
		return 0, fmt.Errorf("%w: read from %s reported %d bytes for a %d byte buffer", ErrIO, r.s, count, n)
	case count == 0:
		return 0, io.EOF
	}
	return count, nil
}

// Read implements io.Reader.Read(). See ReadRange().
func (r *Reader) Read(b []byte) (int, error) {
	return r.ReadRange(b, 0, len(b))
}

// ReadByte implements io.ByteReader.
func (r *Reader) ReadByte() (byte, error) {
	b := make([]byte, 1)
	if _, err := r.Read(b); err != nil {
		return 0, err
	}
	return b[0], nil
}

// Close shuts down the read side of the Socket. The Socket itself stays open, use
// Socket.Close() to release it.
func (r *Reader) Close() error {
	if r.s.Closed() {
		return nil
	}
	r.shutdown()
	return nil
}

func (r *Reader) shutdown() {
	if err := r.s.p.ShutdownRead(r.s.handle); err != nil {
		log.V(1).Infof("uds: problem shutting down reads on %s: %s", r.s, err)
	}
}

// Writer is the outbound direction of a Socket. A write either hands every byte to the
// kernel or fails, partial writes are errors and are never resumed.
type Writer struct {
	s *Socket
}

// WriteRange writes b[off:off+n].
func (w *Writer) WriteRange(b []byte, off, n int) error {
	_, err := w.writeRange(b, off, n)
	return err
}

func (w *Writer) writeRange(b []byte, off, n int) (int, error) {
	if err := checkRange(b, off, n); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	if w.s.Closed() {
		return 0, errClosed("write to", w.s)
	}

	count, err := w.s.p.Write(w.s.handle, b[off:off+n])
	if err != nil {
		return 0, fmt.Errorf("%w: unable to write to %s: %w", ErrIO, w.s, err)
	}
	if count != n {
		if count < 0 || count > n {
			count = 0
		}
		return count, fmt.Errorf("%w: unable to write to %s, wrote %d of %d bytes", ErrIO, w.s, count, n)
	}
	return count, nil
}

// Write implements io.Writer.Write(). See WriteRange().
func (w *Writer) Write(b []byte) (int, error) {
	return w.writeRange(b, 0, len(b))
}

// WriteByte implements io.ByteWriter.
func (w *Writer) WriteByte(c byte) error {
	_, err := w.Write([]byte{c})
	return err
}

// Close shuts down the write side of the Socket, the peer will read io.EOF. The Socket itself
// stays open, use Socket.Close() to release it.
func (w *Writer) Close() error {
	if w.s.Closed() {
		return nil
	}
	w.shutdown()
	return nil
}

func (w *Writer) shutdown() {
	if err := w.s.p.ShutdownWrite(w.s.handle); err != nil {
		log.V(1).Infof("uds: problem shutting down writes on %s: %s", w.s, err)
	}
}
