package bench

import (
	"time"

	"github.com/cheggaaa/pb/v3"
)

// ProgressBar wraps pb with the refresh and template settings used during
// seeding and count-based runs. Increment is safe for concurrent workers.
type ProgressBar struct {
	*pb.ProgressBar
}

func NewProgressBar(total int64) *ProgressBar {
	bar := pb.New64(total)
	bar.SetRefreshRate(125 * time.Millisecond)
	bar.SetTemplateString(`{{string . "prefix"}} {{counters . }} {{bar . }} {{percent . }} {{speed . }}`)
	bar.Start()
	return &ProgressBar{ProgressBar: bar}
}

// SetCaption sets the text shown ahead of the bar.
func (p *ProgressBar) SetCaption(caption string) *ProgressBar {
	p.ProgressBar.Set("prefix", caption)
	return p
}
