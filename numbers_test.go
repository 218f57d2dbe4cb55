package fastscan

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func createIntLines(n, start int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = strconv.Itoa(start + i)
	}
	return lines
}

func TestScanner_ReadInt32(t *testing.T) {
	for termName, term := range terminators {
		for readerName, wrap := range testReaders {
			for _, size := range testBufferSizes {
				t.Run(fmt.Sprintf("%s/%s/%d", termName, readerName, size), func(t *testing.T) {
					input := strings.Join(createIntLines(4, -3), term)
					sc := newTestScanner(t, wrap(strings.NewReader(input)), size)
					for _, want := range []int32{-3, -2, -1, 0} {
						got, err := sc.ReadInt32()
						require.NoError(t, err)
						require.Equal(t, want, got)
					}
					require.False(t, sc.HasNext())
					_, err := sc.ReadInt32()
					require.Equal(t, io.EOF, err)
				})
			}
		}
	}

	t.Run("wraps", func(t *testing.T) {
		sc := newTestScanner(t, strings.NewReader("2147483647\n2147483648\n-2147483648\n4294967297"), 5)
		for _, want := range []int32{math.MaxInt32, math.MinInt32, math.MinInt32, 1} {
			got, err := sc.ReadInt32()
			require.NoError(t, err)
			require.Equal(t, want, got)
		}
	})
}

func TestScanner_ReadInt64(t *testing.T) {
	want := []int64{
		0,
		-1,
		1_000_000_007,
		-98_765_432_109,
		math.MaxInt64,
		math.MinInt64,
	}
	var sb strings.Builder
	for i, v := range want {
		if i > 0 {
			sb.WriteString("\r\n")
		}
		sb.WriteString(strconv.FormatInt(v, 10))
	}
	for _, size := range testBufferSizes {
		t.Run(strconv.Itoa(size), func(t *testing.T) {
			sc := newTestScanner(t, strings.NewReader(sb.String()), size)
			var got []int64
			for sc.HasNext() {
				v, err := sc.ReadInt64()
				require.NoError(t, err)
				got = append(got, v)
			}
			require.Equal(t, want, got)
		})
	}
}

func TestScanner_ReadInt(t *testing.T) {
	t.Run("space separated", func(t *testing.T) {
		sc := newTestScanner(t, strings.NewReader("1 2 3\n-4 5 -6\n"), 3)
		var got []int
		for sc.HasNext() {
			v, err := sc.ReadInt()
			require.NoError(t, err)
			got = append(got, v)
		}
		require.Equal(t, []int{1, 2, 3, -4, 5, -6}, got)
	})

	t.Run("then line", func(t *testing.T) {
		sc := newTestScanner(t, strings.NewReader("42\r\nhello world\n7"), 4)
		v, err := sc.ReadInt()
		require.NoError(t, err)
		require.Equal(t, 42, v)
		line, err := sc.ReadLine()
		require.NoError(t, err)
		require.Equal(t, "hello world", line)
		v, err = sc.ReadInt()
		require.NoError(t, err)
		require.Equal(t, 7, v)
	})

	t.Run("trailing CR", func(t *testing.T) {
		sc := newTestScanner(t, strings.NewReader("5\r"), 2)
		v, err := sc.ReadInt()
		require.NoError(t, err)
		require.Equal(t, 5, v)
		require.False(t, sc.HasNext())
	})

	t.Run("CRLF split across refill", func(t *testing.T) {
		sc := newTestScanner(t, strings.NewReader("1\r\n2\r\n"), 2)
		var got []int
		for sc.HasNext() {
			v, err := sc.ReadInt()
			require.NoError(t, err)
			got = append(got, v)
		}
		require.Equal(t, []int{1, 2}, got)
	})

	t.Run("empty", func(t *testing.T) {
		sc := newTestScanner(t, strings.NewReader(""), 2)
		_, err := sc.ReadInt()
		require.Equal(t, io.EOF, err)
	})
}
