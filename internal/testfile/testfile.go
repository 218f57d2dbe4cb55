// Package testfile writes files of random integers for tests, benchmarks
// and the gen command.
package testfile

import (
	"bufio"
	"io"
	"math/rand"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Write writes rows lines of cols random integers in [min, max], separated
// by single spaces. Every line ends with "\n". It returns the number of bytes
// written.
func Write(w io.Writer, rows, cols, min, max int, rnd *rand.Rand) (int64, error) {
	if max < min {
		return 0, errors.Errorf("max %d is less than min %d", max, min)
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(1))
	}
	bw := bufio.NewWriter(w)
	var written int64
	num := make([]byte, 0, 24)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			num = num[:0]
			if j > 0 {
				num = append(num, ' ')
			}
			num = strconv.AppendInt(num, int64(min)+rnd.Int63n(int64(max)-int64(min)+1), 10)
			n, err := bw.Write(num)
			written += int64(n)
			if err != nil {
				return written, err
			}
		}
		err := bw.WriteByte('\n')
		if err != nil {
			return written, err
		}
		written++
	}
	return written, bw.Flush()
}

// Create writes a new file at path with Write.
func Create(path string, rows, cols, min, max int, rnd *rand.Rand) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := Write(file, rows, cols, min, max, rnd)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	return n, err
}
