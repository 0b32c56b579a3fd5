package tasks

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/desertthunder/mrx/internal/shared"
	"golang.org/x/time/rate"
)

// DownloadJob is a single file to fetch.
type DownloadJob struct {
	ID   string
	Name string
	URL  string
}

// DownloadOpts contains configuration for bulk downloads.
type DownloadOpts struct {
	Dir        string  // Output directory (default: downloads)
	NumWorkers int     // Concurrent workers (default: 3, max: 8)
	RateLimit  float64 // Requests per second (default: 2)
}

// DownloadResult is the outcome of one [DownloadJob].
type DownloadResult struct {
	ID    string
	Name  string
	Path  string
	Bytes int64
	Error error
}

// BulkDownloadResult summarizes a batch.
type BulkDownloadResult struct {
	Total     int
	Succeeded int
	Failed    int
	Dir       string
	Results   []DownloadResult
}

// BulkDownload fetches files concurrently with rate limiting and progress tracking.
func (l *Loader) BulkDownload(
	ctx context.Context,
	jobs []DownloadJob,
	opts DownloadOpts,
	progress chan<- ProgressUpdate,
) (*BulkDownloadResult, error) {
	if opts.Dir == "" {
		opts.Dir = "downloads"
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 8 {
		opts.NumWorkers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkDownloadResult{
		Total:   len(jobs),
		Dir:     opts.Dir,
		Results: make([]DownloadResult, 0, len(jobs)),
	}
	if len(jobs) == 0 {
		return result, nil
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	queue := make(chan DownloadJob, len(jobs))
	results := make(chan DownloadResult, len(jobs))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go l.downloadWorker(ctx, &wg, limiter, queue, results, opts.Dir)
	}

	sendProgress(progress, downloadStartedUpdate(len(jobs)))
	for _, j := range jobs {
		queue <- j
	}
	close(queue)

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)
		if res.Error != nil {
			result.Failed++
			sendProgress(progress, downloadFailedUpdate(completed, len(jobs), res))
		} else {
			result.Succeeded++
			sendProgress(progress, downloadCompletedUpdate(completed, len(jobs), res))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (l *Loader) downloadWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	queue <-chan DownloadJob,
	results chan<- DownloadResult,
	dir string,
) {
	defer wg.Done()

	for job := range queue {
		res := DownloadResult{ID: job.ID, Name: displayName(job)}

		if err := limiter.Wait(ctx); err != nil {
			res.Error = err
			results <- res
			continue
		}

		res.Path, res.Bytes, res.Error = l.downloadOne(ctx, job, dir)
		results <- res
	}
}

func (l *Loader) downloadOne(ctx context.Context, job DownloadJob, dir string) (string, int64, error) {
	if job.URL == "" {
		return "", 0, fmt.Errorf("%w: no file attached", shared.ErrFileNotSelected)
	}

	dest := filepath.Join(dir, FileName(job))
	f, err := os.Create(dest)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create %s: %w", dest, err)
	}

	n, err := l.api.Download(ctx, job.URL, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return "", 0, err
	}
	return dest, n, nil
}

func displayName(job DownloadJob) string {
	if job.Name != "" {
		return job.Name
	}
	return job.ID
}

// FileName derives a safe local file name from the job name (or id) and the URL's extension.
func FileName(job DownloadJob) string {
	base := slug(displayName(job))
	if base == "" {
		base = "file"
	}
	if job.ID != "" && job.Name != "" {
		base = base + "-" + slug(job.ID)
	}

	ext := path.Ext(strings.SplitN(strings.SplitN(job.URL, "?", 2)[0], "#", 2)[0])
	if len(ext) > 6 || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return base + strings.ToLower(ext)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
