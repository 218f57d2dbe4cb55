package fastscan

import (
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultBufferSize is the initial buffer size when Options.BufferSize is zero.
	DefaultBufferSize = 8192
	// DefaultMaxBufferSize is the buffer ceiling when Options.MaxBufferSize is zero.
	DefaultMaxBufferSize = 1 << 16
)

var (
	// ErrLineTooLong is returned by ReadLine when a line does not fit in
	// Options.MaxBufferSize. The line is not returned in part.
	ErrLineTooLong = errors.New("fastscan: line too long")

	// ErrInvalidOptions is returned by New for impossible buffer sizes.
	ErrInvalidOptions = errors.New("fastscan: invalid options")
)

// Options are options for a Scanner
type Options struct {
	// BufferSize is the initial buffer size. Default is 8192.
	BufferSize int
	// MaxBufferSize is the hard ceiling for buffer growth. ReadLine fails
	// with ErrLineTooLong on lines of this many bytes or more. Default is
	// 65536.
	MaxBufferSize int
	// Logger receives source read failures. Default is a no-op logger.
	Logger *zap.Logger
}

func (o *Options) withDefaults() (*Options, error) {
	if o == nil {
		o = new(Options)
	}
	out := &Options{
		BufferSize:    o.BufferSize,
		MaxBufferSize: o.MaxBufferSize,
		Logger:        o.Logger,
	}
	if out.BufferSize == 0 {
		out.BufferSize = DefaultBufferSize
	}
	if out.MaxBufferSize == 0 {
		out.MaxBufferSize = DefaultMaxBufferSize
		if out.BufferSize > out.MaxBufferSize {
			out.MaxBufferSize = out.BufferSize
		}
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	if out.BufferSize < 1 || out.BufferSize > out.MaxBufferSize {
		return nil, errors.Wrapf(ErrInvalidOptions, "buffer size %d with max %d", out.BufferSize, out.MaxBufferSize)
	}
	return out, nil
}

// State is the result of an availability check.
type State int

const (
	// StateData means at least one byte is buffered.
	StateData State = iota
	// StateEOF means the source ended normally.
	StateEOF
	// StateFailed means the source returned an error. See Scanner.Err.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateData:
		return "data"
	case StateEOF:
		return "eof"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Scanner reads integers, bytes and lines from a byte stream through a
// reusable buffer.
//
// A Scanner is not safe for concurrent use.
type Scanner struct {
	src    io.Reader
	logger *zap.Logger

	buf     []byte
	n       int // valid bytes in buf
	off     int // start of the unreturned token
	pos     int // next byte to inspect
	maxSize int

	// skipLF is set when a CR terminator was the last buffered byte, so a LF
	// at the start of the next refill belongs to it.
	skipLF bool

	// err is sticky. io.EOF once the source ends.
	err       error
	bytesRead int64
	closed    bool
}

// New returns a new Scanner reading from src. When src is an io.Closer the
// Scanner owns it and closes it in Close.
func New(src io.Reader, opts *Options) (*Scanner, error) {
	var err error
	opts, err = opts.withDefaults()
	if err != nil {
		return nil, err
	}
	return &Scanner{
		src:     src,
		logger:  opts.Logger,
		buf:     make([]byte, opts.BufferSize),
		maxSize: opts.MaxBufferSize,
	}, nil
}

// Close releases the source. Only the first call closes it.
func (s *Scanner) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if c, ok := s.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Err returns the first error from the source. It is nil when the source
// ended normally.
func (s *Scanner) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}

// BytesRead returns the number of bytes read from the source so far.
func (s *Scanner) BytesRead() int64 {
	return s.bytesRead
}

// Available reports whether there is at least one more byte to read,
// reading from the source only when the buffer is used up.
func (s *Scanner) Available() State {
	for s.pos >= s.n {
		if !s.fill(0) {
			if s.Err() != nil {
				return StateFailed
			}
			return StateEOF
		}
		s.off, s.pos = 0, 0
		if s.skipLF {
			s.skipLF = false
			if s.buf[0] == lf {
				s.off, s.pos = 1, 1
			}
		}
	}
	return StateData
}

// HasNext returns true when at least one more byte can be read. Check Err
// after it returns false to tell a failed source from a finished one.
func (s *Scanner) HasNext() bool {
	return s.Available() == StateData
}

// ReadByte returns the next byte. The error is io.EOF at the end.
//
// ReadByte does not move the start of the current line, so a ReadLine
// following it includes the bytes it returned from the same buffer.
func (s *Scanner) ReadByte() (byte, error) {
	if !s.HasNext() {
		return 0, s.endErr()
	}
	b := s.buf[s.pos]
	s.pos++
	return b, nil
}

// endErr is the error read operations return when nothing is available.
func (s *Scanner) endErr() error {
	if err := s.Err(); err != nil {
		return errors.Wrap(err, "fastscan: read source")
	}
	return io.EOF
}
