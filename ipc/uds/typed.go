package uds

import (
	"fmt"
	"time"
)

// Conn is a Stream Socket, it can always be read from and written to. It implements
// io.ReadWriteCloser.
type Conn struct {
	s *Socket
	r *Reader
	w *Writer
}

// AsConn converts s into a Conn. ErrUnsupported is returned if s cannot both read and write.
func AsConn(s *Socket) (*Conn, error) {
	if s.reader == nil || s.writer == nil {
		return nil, fmt.Errorf("%w: %s is not bidirectional", ErrUnsupported, s)
	}
	return &Conn{s: s, r: s.reader, w: s.writer}, nil
}

// Read implements io.Reader.Read(). See Reader.ReadRange().
func (c *Conn) Read(b []byte) (int, error) {
	return c.r.Read(b)
}

// ReadRange reads into b[off:off+n].
func (c *Conn) ReadRange(b []byte, off, n int) (int, error) {
	return c.r.ReadRange(b, off, n)
}

// ReadByte implements io.ByteReader.
func (c *Conn) ReadByte() (byte, error) {
	return c.r.ReadByte()
}

// Write implements io.Writer.Write(). See Writer.WriteRange().
func (c *Conn) Write(b []byte) (int, error) {
	return c.w.Write(b)
}

// WriteRange writes b[off:off+n].
func (c *Conn) WriteRange(b []byte, off, n int) error {
	return c.w.WriteRange(b, off, n)
}

// WriteByte implements io.ByteWriter.
func (c *Conn) WriteByte(b byte) error {
	return c.w.WriteByte(b)
}

// CloseRead shuts down the read side of the Conn.
func (c *Conn) CloseRead() error {
	return c.r.Close()
}

// CloseWrite shuts down the write side of the Conn, the peer will read io.EOF.
func (c *Conn) CloseWrite() error {
	return c.w.Close()
}

// Close implements io.Closer.Close(). See Socket.Close().
func (c *Conn) Close() error {
	return c.s.Close()
}

// Unlink removes the socket file if this Conn came from CreateStream.
func (c *Conn) Unlink() error {
	return c.s.Unlink()
}

// SetTimeout bounds how long a Read or Write will block. 0 blocks forever.
func (c *Conn) SetTimeout(d time.Duration) error {
	return c.s.SetTimeout(d)
}

// Cred returns the credentials of the process on the other end of the Conn.
func (c *Conn) Cred() (Cred, error) {
	return c.s.Cred()
}

// Path returns the path of the socket, empty for accepted connections.
func (c *Conn) Path() string {
	return c.s.Path()
}

// Reader returns the inbound direction of the Conn.
func (c *Conn) Reader() *Reader {
	return c.r
}

// Writer returns the outbound direction of the Conn.
func (c *Conn) Writer() *Writer {
	return c.w
}

// Socket returns the underlying Socket.
func (c *Conn) Socket() *Socket {
	return c.s
}

// Sender is a Datagram client. It can only write. It implements io.WriteCloser.
type Sender struct {
	s *Socket
	w *Writer
}

// AsSender converts s into a Sender. ErrUnsupported is returned if s cannot write.
func AsSender(s *Socket) (*Sender, error) {
	if s.writer == nil {
		return nil, fmt.Errorf("%w: %s cannot be written to", ErrUnsupported, s)
	}
	return &Sender{s: s, w: s.writer}, nil
}

// Write implements io.Writer.Write(). Each call is sent as one datagram.
func (s *Sender) Write(b []byte) (int, error) {
	return s.w.Write(b)
}

// WriteRange sends b[off:off+n] as one datagram.
func (s *Sender) WriteRange(b []byte, off, n int) error {
	return s.w.WriteRange(b, off, n)
}

// WriteByte implements io.ByteWriter.
func (s *Sender) WriteByte(c byte) error {
	return s.w.WriteByte(c)
}

// Close implements io.Closer.Close().
func (s *Sender) Close() error {
	return s.s.Close()
}

// SetTimeout bounds how long a Write will block. 0 blocks forever.
func (s *Sender) SetTimeout(d time.Duration) error {
	return s.s.SetTimeout(d)
}

// Path returns the path of the server socket.
func (s *Sender) Path() string {
	return s.s.Path()
}

// Writer returns the Sender's Writer.
func (s *Sender) Writer() *Writer {
	return s.w
}

// Socket returns the underlying Socket.
func (s *Sender) Socket() *Socket {
	return s.s
}

// Receiver is a Datagram server. It can only read. It implements io.ReadCloser.
type Receiver struct {
	s *Socket
	r *Reader
}

// AsReceiver converts s into a Receiver. ErrUnsupported is returned if s cannot read.
func AsReceiver(s *Socket) (*Receiver, error) {
	if s.reader == nil {
		return nil, fmt.Errorf("%w: %s cannot be read from", ErrUnsupported, s)
	}
	return &Receiver{s: s, r: s.reader}, nil
}

// Read implements io.Reader.Read(). Each call receives at most one datagram; if b is too
// small the rest of the datagram is discarded.
func (r *Receiver) Read(b []byte) (int, error) {
	return r.r.Read(b)
}

// ReadRange receives into b[off:off+n].
func (r *Receiver) ReadRange(b []byte, off, n int) (int, error) {
	return r.r.ReadRange(b, off, n)
}

// ReadByte implements io.ByteReader.
func (r *Receiver) ReadByte() (byte, error) {
	return r.r.ReadByte()
}

// Close implements io.Closer.Close().
func (r *Receiver) Close() error {
	return r.s.Close()
}

// Unlink removes the socket file.
func (r *Receiver) Unlink() error {
	return r.s.Unlink()
}

// SetTimeout bounds how long a Read will block. 0 blocks forever.
func (r *Receiver) SetTimeout(d time.Duration) error {
	return r.s.SetTimeout(d)
}

// Path returns the path the Receiver is bound to.
func (r *Receiver) Path() string {
	return r.s.Path()
}

// Reader returns the Receiver's Reader.
func (r *Receiver) Reader() *Reader {
	return r.r
}

// Socket returns the underlying Socket.
func (r *Receiver) Socket() *Socket {
	return r.s
}
