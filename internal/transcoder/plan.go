// Package transcoder renders a scanned video down to its keep ranges by
// extracting each range and concatenating the segments with ffmpeg.
package transcoder

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"paneltrim/internal/services"
	"paneltrim/internal/timeline"
)

// Segment is one keep range mapped to an on-disk intermediate file.
type Segment struct {
	Index int
	Start float64
	End   float64
	Path  string
}

// Plan lays out the work for rendering one source video: a scratch session
// directory, one extracted segment per keep range, and a concat list feeding
// the final output.
type Plan struct {
	Source     string
	Output     string
	SessionDir string
	Segments   []Segment
	ConcatList string
}

// NewPlan builds a render plan. Keep ranges shorter than the minimum keep
// length carry no usable media and are skipped; a plan with nothing to render
// is a validation error.
func NewPlan(workRoot, source, output string, keeps []timeline.KeepRange) (*Plan, error) {
	if strings.TrimSpace(source) == "" {
		return nil, services.Wrap(services.ErrValidation, "transcoder", "plan", "empty source path", nil)
	}
	if strings.TrimSpace(output) == "" {
		return nil, services.Wrap(services.ErrValidation, "transcoder", "plan", "empty output path", nil)
	}

	sessionDir := filepath.Join(workRoot, "render-"+uuid.NewString())
	ext := filepath.Ext(output)
	if ext == "" {
		ext = ".mkv"
	}

	segments := make([]Segment, 0, len(keeps))
	for _, keep := range keeps {
		if keep.Duration() < timeline.MinKeepLength {
			continue
		}
		index := len(segments)
		segments = append(segments, Segment{
			Index: index,
			Start: keep.Start,
			End:   keep.End,
			Path:  filepath.Join(sessionDir, fmt.Sprintf("segment-%03d%s", index, ext)),
		})
	}
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrValidation, "transcoder", "plan", "no keep ranges to render", nil)
	}

	return &Plan{
		Source:     source,
		Output:     output,
		SessionDir: sessionDir,
		Segments:   segments,
		ConcatList: filepath.Join(sessionDir, "concat.txt"),
	}, nil
}

// SegmentArgs returns the ffmpeg arguments extracting one segment with reset
// timestamps so the later concat starts every piece at zero.
func (p *Plan) SegmentArgs(segment Segment) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-loglevel", "error",
		"-ss", formatSeconds(segment.Start),
		"-to", formatSeconds(segment.End),
		"-i", p.Source,
		"-map", "0",
		"-c", "copy",
		"-avoid_negative_ts", "make_zero",
		"-y",
		segment.Path,
	}
}

// ConcatArgs returns the ffmpeg arguments joining the extracted segments via
// the concat demuxer.
func (p *Plan) ConcatArgs() []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-loglevel", "error",
		"-f", "concat",
		"-safe", "0",
		"-i", p.ConcatList,
		"-map", "0",
		"-c", "copy",
		"-y",
		p.Output,
	}
}

// ConcatListContent renders the concat demuxer list. Single quotes in paths
// are escaped the way the demuxer expects.
func (p *Plan) ConcatListContent() string {
	var builder strings.Builder
	for _, segment := range p.Segments {
		escaped := strings.ReplaceAll(segment.Path, "'", `'\''`)
		fmt.Fprintf(&builder, "file '%s'\n", escaped)
	}
	return builder.String()
}

func formatSeconds(value float64) string {
	return fmt.Sprintf("%.3f", value)
}
