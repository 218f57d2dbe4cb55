package fastscan

// ReadLine returns the next line without its terminator. LF, CR and CRLF all
// end a line. The last line does not need a terminator.
//
// The error is io.EOF when there is nothing left to read, and ErrLineTooLong
// when the line does not fit in Options.MaxBufferSize.
func (s *Scanner) ReadLine() (string, error) {
	line, err := s.scanLine()
	if err != nil {
		return "", err
	}
	return string(line), nil
}

// AppendLine is ReadLine for callers that keep their own buffer. It appends
// the next line to dst and returns the extended slice.
func (s *Scanner) AppendLine(dst []byte) ([]byte, error) {
	line, err := s.scanLine()
	if err != nil {
		return dst, err
	}
	return append(dst, line...), nil
}

// scanLine returns the next line as a slice of s.buf. It is only valid until
// the next read.
func (s *Scanner) scanLine() ([]byte, error) {
	if !s.HasNext() {
		return nil, s.endErr()
	}
	for {
		for s.pos < s.n {
			c := s.buf[s.pos]
			if c != lf && c != cr {
				s.pos++
				continue
			}
			line := s.buf[s.off:s.pos]
			s.consumeTerminator(c)
			return line, nil
		}

		// no terminator in the buffer; the line continues past it
		var more bool
		if s.n-s.off < len(s.buf) {
			more = s.compact()
		} else {
			var err error
			more, err = s.grow()
			if err != nil {
				return nil, err
			}
		}
		if !more {
			line := s.buf[s.off:s.n]
			s.off, s.pos = s.n, s.n
			return line, nil
		}
	}
}

// consumeTerminator consumes the terminator c at pos, plus the LF of a CRLF,
// and moves off to the byte after it.
func (s *Scanner) consumeTerminator(c byte) {
	s.pos++
	if c == cr {
		switch {
		case s.pos < s.n:
			if s.buf[s.pos] == lf {
				s.pos++
			}
		default:
			s.skipLF = true
		}
	}
	s.off = s.pos
}
