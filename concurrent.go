package fastscan

import (
	"context"
	"io"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/killa-beez/gopkgs/pool"
	"github.com/pkg/errors"
)

var errJobNotRun = errors.New("job did not run")

// Job is one source for RunConcurrent.
type Job struct {
	// Name identifies the job in errors.
	Name string
	// Open returns the byte stream. The Scanner closes it.
	Open func(ctx context.Context) (io.ReadCloser, error)
	// Consume reads from the Scanner. It runs on its own goroutine.
	Consume func(ctx context.Context, s *Scanner) error
}

// RunConcurrent runs every job on its own Scanner, at most concurrency at a
// time. Each Scanner is used by one goroutine only. The returned error
// combines the errors of all failed jobs.
func RunConcurrent(ctx context.Context, jobs []Job, concurrency int, opts *Options) error {
	if concurrency < 1 {
		concurrency = 1
	}
	if _, err := opts.withDefaults(); err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	jobErrs := make([]error, len(jobs))
	for i := range jobErrs {
		jobErrs[i] = errJobNotRun
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := pool.New(len(jobs), concurrency)
	for i := range jobs {
		i := i
		job := jobs[i]
		p.Add(pool.NewWorkUnit(func(ctx2 context.Context) {
			jobErrs[i] = runJob(ctx2, job, opts)
		}))
	}
	p.Start(ctx)
	p.Wait()

	var result *multierror.Error
	for i, err := range jobErrs {
		if err == errJobNotRun && ctx.Err() != nil {
			err = ctx.Err()
		}
		if err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "job %s", jobName(jobs[i], i)))
		}
	}
	return result.ErrorOrNil()
}

func jobName(job Job, i int) string {
	if job.Name != "" {
		return job.Name
	}
	return "#" + strconv.Itoa(i)
}

func runJob(ctx context.Context, job Job, opts *Options) (err error) {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	rc, err := job.Open(ctx)
	if err != nil {
		return err
	}
	scanner, err := New(rc, opts)
	if err != nil {
		_ = rc.Close() //nolint:errcheck // the options error matters more
		return err
	}
	defer func() {
		closeErr := scanner.Close()
		if err == nil {
			err = closeErr
		}
	}()
	err = job.Consume(ctx, scanner)
	if err != nil {
		return err
	}
	return scanner.Err()
}
