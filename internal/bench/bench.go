// Package bench measures classification latency over a directory of images
// and reports it as a markdown table grouped by file format.
package bench

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/kdduha/sportsclass/internal/models"
	"github.com/kdduha/sportsclass/internal/source"
)

var imageFormats = []string{"jpg", "jpeg", "png", "gif", "webp", "bmp"}

type Classifier interface {
	Classify(ctx context.Context, src source.Source) (*models.Classification, error)
}

type Result struct {
	File     string
	Format   string
	Class    string
	Duration time.Duration
	Err      error
	Size     int64
}

type Agg struct {
	Count      int
	Total      time.Duration
	TotalBytes int64
}

// Run classifies every image under dir, one at a time.
func Run(ctx context.Context, logger *log.Logger, dir string, c Classifier) ([]Result, error) {
	var results []Result

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		format := formatOf(path)
		if !slices.Contains(imageFormats, format) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		res := classifyFile(ctx, c, path, format)
		if res.Err != nil {
			logger.Println("ERR:", res.File, res.Err)
		} else {
			logger.Printf("OK %s %s %v", res.File, res.Class, res.Duration)
		}
		results = append(results, res)
		return nil
	})
	if err != nil {
		return results, fmt.Errorf("walk %s: %w", dir, err)
	}
	return results, nil
}

func classifyFile(ctx context.Context, c Classifier, path, format string) Result {
	start := time.Now()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Result{File: filepath.Base(path), Format: format, Err: err}
	}

	res := Result{
		File:   filepath.Base(path),
		Format: format,
		Size:   int64(len(raw)),
	}
	out, err := c.Classify(ctx, source.FromFile(res.File, raw))
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	res.Class = out.Class
	return res
}

func formatOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func Aggregate(results []Result) map[string]Agg {
	m := map[string]Agg{}
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		a := m[r.Format]
		a.Count++
		a.TotalBytes += r.Size
		a.Total += r.Duration
		m[r.Format] = a
	}
	return m
}

func WriteMarkdown(w io.Writer, results []Result) {
	fmt.Fprintln(w, "\n## Benchmark Results")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Format | Requests | Avg Time | Total Time | Avg File Size |")
	fmt.Fprintln(w, "|--------|----------|----------|------------|---------------|")

	agg := Aggregate(results)
	formats := make([]string, 0, len(agg))
	for format := range agg {
		formats = append(formats, format)
	}
	slices.Sort(formats)

	var (
		totalCount    int
		totalDuration time.Duration
		totalBytes    int64
	)

	for _, format := range formats {
		a := agg[format]
		avg := a.Total / time.Duration(a.Count)
		avgSize := a.TotalBytes / int64(a.Count)
		fmt.Fprintf(w, "| %s | %d | %v | %v | %s |\n",
			format,
			a.Count,
			avg.Round(time.Millisecond),
			a.Total.Round(time.Millisecond),
			HumanBytes(avgSize),
		)
		totalCount += a.Count
		totalDuration += a.Total
		totalBytes += a.TotalBytes
	}

	if totalCount > 0 {
		mean := totalDuration / time.Duration(totalCount)
		avgSize := totalBytes / int64(totalCount)
		fmt.Fprintf(w, "| **ALL** | %d | %v | %v | %s |\n",
			totalCount,
			mean.Round(time.Millisecond),
			totalDuration.Round(time.Millisecond),
			HumanBytes(avgSize),
		)
	}

	if failed := len(results) - totalCount; failed > 0 {
		fmt.Fprintf(w, "\n%d of %d requests failed\n", failed, len(results))
	}
}

func HumanBytes(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)
	switch {
	case size >= GB:
		return fmt.Sprintf("%.2f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.2f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.2f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
