package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/willabides/fastscan"
	"github.com/willabides/fastscan/internal/testfile"
	"go.uber.org/zap"
)

// Globals are the settings shared by every command.
type Globals struct {
	BufferSize    int
	MaxBufferSize int
	Gzip          bool
	Charset       string

	logger *zap.Logger
}

func (g *Globals) scannerOptions() *fastscan.Options {
	return &fastscan.Options{
		BufferSize:    g.BufferSize,
		MaxBufferSize: g.MaxBufferSize,
		Logger:        g.logger,
	}
}

func (g *Globals) sourceOptions() *fastscan.SourceOptions {
	return &fastscan.SourceOptions{
		Gzip:    g.Gzip,
		Charset: g.Charset,
	}
}

func (g *Globals) open(ctx context.Context, location string) (*fastscan.Scanner, error) {
	rc, err := fastscan.Open(ctx, location, g.sourceOptions())
	if err != nil {
		return nil, err
	}
	sc, err := fastscan.New(rc, g.scannerOptions())
	if err != nil {
		_ = rc.Close() //nolint:errcheck // nothing to do with this error
		return nil, err
	}
	return sc, nil
}

type linesCmd struct {
	Sources []string `kong:"arg,name=source,help='files, gs://bucket/object urls or - for stdin'"`
	Count   bool     `kong:"help='print only the number of lines'"`
}

func (c *linesCmd) Run(g *Globals) error {
	ctx := context.Background()
	out := bufio.NewWriter(os.Stdout)
	var line []byte
	var count, total int64
	for _, location := range c.Sources {
		sc, err := g.open(ctx, location)
		if err != nil {
			return err
		}
		for sc.HasNext() {
			line, err = sc.AppendLine(line[:0])
			if err != nil {
				break
			}
			count++
			if c.Count {
				continue
			}
			line = append(line, '\n')
			_, err = out.Write(line)
			if err != nil {
				break
			}
		}
		if err == nil {
			err = sc.Err()
		}
		total += sc.BytesRead()
		closeErr := sc.Close()
		if err == nil {
			err = closeErr
		}
		if err != nil {
			return errors.Wrap(err, location)
		}
	}
	if c.Count {
		fmt.Fprintln(out, count)
	}
	g.logger.Debug("done", zap.Int64("lines", count), zap.String("read", humanize.Bytes(uint64(total))))
	return out.Flush()
}

type intStats struct {
	Source string `json:"source"`
	Count  int64  `json:"count"`
	Sum    int64  `json:"sum"`
	Min    int64  `json:"min"`
	Max    int64  `json:"max"`
	Bytes  int64  `json:"bytes"`
}

func (s *intStats) add(v int64) {
	if s.Count == 0 || v < s.Min {
		s.Min = v
	}
	if s.Count == 0 || v > s.Max {
		s.Max = v
	}
	s.Count++
	s.Sum += v
}

type intsCmd struct {
	Sources     []string `kong:"arg,name=source,help='files, gs://bucket/object urls or - for stdin'"`
	Concurrency int      `kong:"default=4,help='sources to scan at once'"`
	JSON        bool     `kong:"name=json,help='print one json object per source'"`
}

func (c *intsCmd) Run(g *Globals) error {
	ctx := context.Background()
	stats := make([]intStats, len(c.Sources))
	jobs := make([]fastscan.Job, len(c.Sources))
	srcOpts := g.sourceOptions()
	for i, location := range c.Sources {
		location := location
		st := &stats[i]
		st.Source = location
		jobs[i] = fastscan.Job{
			Name: location,
			Open: func(ctx context.Context) (io.ReadCloser, error) {
				return fastscan.Open(ctx, location, srcOpts)
			},
			Consume: func(ctx context.Context, sc *fastscan.Scanner) error {
				for sc.HasNext() {
					v, err := sc.ReadInt64()
					if err != nil {
						return err
					}
					st.add(v)
				}
				st.Bytes = sc.BytesRead()
				return nil
			},
		}
	}
	err := fastscan.RunConcurrent(ctx, jobs, c.Concurrency, g.scannerOptions())
	if err != nil {
		return err
	}
	out := bufio.NewWriter(os.Stdout)
	for i := range stats {
		st := &stats[i]
		if c.JSON {
			b, err := jsoniter.ConfigFastest.Marshal(st)
			if err != nil {
				return err
			}
			b = append(b, '\n')
			_, err = out.Write(b)
			if err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(out, "%s: count=%d sum=%d min=%d max=%d read=%s\n",
			st.Source, st.Count, st.Sum, st.Min, st.Max, humanize.Bytes(uint64(st.Bytes)))
	}
	return out.Flush()
}

type genCmd struct {
	Path string `kong:"arg,help='file to write'"`
	Rows int    `kong:"default=10,help='number of lines'"`
	Cols int    `kong:"default=1,help='integers per line'"`
	Min  int    `kong:"default=1,help='smallest value'"`
	Max  int    `kong:"default=1000000000,help='largest value'"`
	Seed int64  `kong:"help='random seed. default is the current time'"`
}

func (c *genCmd) Run(g *Globals) error {
	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	n, err := testfile.Create(c.Path, c.Rows, c.Cols, c.Min, c.Max, rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s to %s\n", humanize.Bytes(uint64(n)), c.Path)
	return nil
}

var cli struct {
	BufferSize    int    `kong:"default=8192,help='initial buffer size in bytes'"`
	MaxBufferSize int    `kong:"default=65536,help='longest line plus one, in bytes'"`
	Gzip          bool   `kong:"help='decompress sources with gzip. sources ending in .gz always are'"`
	Charset       string `kong:"help='transcode sources from this charset to utf-8'"`
	Verbose       bool   `kong:"short=v,help='log source errors to stderr'"`

	Lines linesCmd `kong:"cmd,help='print lines with LF endings'"`
	Ints  intsCmd  `kong:"cmd,help='sum the integers in each source'"`
	Gen   genCmd   `kong:"cmd,help='write a file of random integers'"`
}

func main() {
	k := kong.Parse(&cli)
	g := &Globals{
		BufferSize:    cli.BufferSize,
		MaxBufferSize: cli.MaxBufferSize,
		Gzip:          cli.Gzip,
		Charset:       cli.Charset,
		logger:        zap.NewNop(),
	}
	if cli.Verbose {
		logger, err := zap.NewDevelopment()
		k.FatalIfErrorf(err, "error creating logger")
		g.logger = logger
	}
	err := k.Run(g)
	_ = g.logger.Sync() //nolint:errcheck // nothing to do with this error
	k.FatalIfErrorf(err)
}
