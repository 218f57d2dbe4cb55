package fastscan

import (
	"io"

	"go.uber.org/zap"
)

const (
	lf   = '\n'
	cr   = '\r'
	dash = '-'

	// same limit bufio uses for readers that keep returning 0, nil
	maxConsecutiveEmptyReads = 100
)

// fill reads from the source into buf[start:] and returns true when it added
// at least one byte. It does not move off or pos.
func (s *Scanner) fill(start int) bool {
	if s.err != nil || start >= len(s.buf) {
		return false
	}
	for i := 0; i < maxConsecutiveEmptyReads; i++ {
		n, err := s.src.Read(s.buf[start:])
		if n < 0 || n > len(s.buf)-start {
			n = 0
			if err == nil {
				err = io.ErrShortBuffer
			}
		}
		s.bytesRead += int64(n)
		if err != nil {
			s.setErr(err)
		}
		if n > 0 {
			s.n = start + n
			return true
		}
		if err != nil {
			return false
		}
	}
	s.setErr(io.ErrNoProgress)
	return false
}

func (s *Scanner) setErr(err error) {
	if s.err != nil {
		return
	}
	s.err = err
	if err != io.EOF {
		s.logger.Warn("source read failed", zap.Error(err), zap.Int64("bytes_read", s.bytesRead))
	}
}

// compact moves the unreturned bytes [off, n) to the front of the buffer and
// fills the rest from the source. It returns false when the source had
// nothing more to give. The buffer must not be full of unreturned bytes.
func (s *Scanner) compact() bool {
	tail := s.n - s.off
	if s.off > 0 {
		copy(s.buf, s.buf[s.off:s.n])
	}
	s.n, s.off, s.pos = tail, 0, tail
	return s.fill(tail)
}

// grow doubles the buffer, keeping the unreturned bytes at its front, and
// fills the rest from the source. It fails with ErrLineTooLong when the
// doubled size would be over maxSize.
func (s *Scanner) grow() (bool, error) {
	size := len(s.buf) << 1
	if size > s.maxSize {
		return false, ErrLineTooLong
	}
	buf := make([]byte, size)
	tail := copy(buf, s.buf[s.off:s.n])
	s.buf = buf
	s.n, s.off, s.pos = tail, 0, tail
	return s.fill(tail), nil
}
