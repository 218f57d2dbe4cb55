package fastscan

// ReadInt32 reads a decimal integer with an optional leading '-' and
// consumes the one byte that ends it (both bytes of a CRLF). End of stream
// also ends it. The error is io.EOF when there is nothing left to read.
//
// Overflow is not detected; values wrap like int32 arithmetic. Bytes that
// are not digits are not validated, so a token like "12a" reads as 12 and
// consumes the 'a'.
func (s *Scanner) ReadInt32() (int32, error) {
	v, err := s.readInt()
	// truncating the 64-bit accumulator gives the same result as
	// accumulating in 32 bits
	return int32(v), err
}

// ReadInt64 is ReadInt32 with a 64-bit result.
func (s *Scanner) ReadInt64() (int64, error) {
	return s.readInt()
}

// ReadInt is ReadInt32 with a result the size of int.
func (s *Scanner) ReadInt() (int, error) {
	v, err := s.readInt()
	return int(v), err
}

func (s *Scanner) readInt() (int64, error) {
	if !s.HasNext() {
		return 0, s.endErr()
	}
	neg := false
	if s.buf[s.pos] == dash {
		neg = true
		s.pos++
	}
	var v int64
	for {
		for s.pos < s.n {
			c := s.buf[s.pos]
			if c < '0' || c > '9' {
				s.consumeTerminator(c)
				if neg {
					v = -v
				}
				return v, nil
			}
			v = v*10 + int64(c-'0')
			s.pos++
		}
		if !s.HasNext() {
			if neg {
				v = -v
			}
			return v, nil
		}
	}
}
