// Package convert orchestrates the presentation-to-PDF pipeline: package
// opening, slide extraction, rasterization, and PDF assembly. A failure
// on one slide produces an error page in its place; only an unreadable
// package or an empty one fails the whole conversion.
package convert

import (
	"fmt"

	"github.com/411sst/SkillStack/pdfpage"
	"github.com/411sst/SkillStack/pptx"
	"github.com/411sst/SkillStack/render"
)

// Options configures a conversion. The zero value converts at the default
// screen resolution with no progress reporting.
type Options struct {
	// DPI is the raster resolution. Zero or negative selects the
	// 96 DPI default.
	DPI float64

	// Progress, when non-nil, receives percentages from 0 to 100. Values
	// are strictly increasing per call; 0 and 100 are always delivered.
	// The callback runs on a separate goroutine and never blocks slide
	// processing: a slow observer skips intermediate values rather than
	// queueing them. A panic inside it does not abort the conversion.
	Progress func(percent int)

	// FontDirs lists extra directories to scan for fonts, ahead of the
	// OS defaults.
	FontDirs []string

	// Fonts overrides the font cache, letting callers share one cache
	// across conversions. When set, FontDirs is ignored.
	Fonts *render.FontCache
}

// ToPDF converts a presentation package to a PDF with one page per slide.
// Slides are processed in their numeric order. Returns an error wrapping
// ErrMalformedPackage or ErrNoSlides; any other slide-level failure is
// absorbed into an error page.
func ToPDF(data []byte, opts Options) ([]byte, error) {
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = pptx.DefaultDPI
	}
	fonts := opts.Fonts
	if fonts == nil {
		fonts = render.NewFontCache(opts.FontDirs...)
	}

	progress := newProgressNotifier(opts.Progress)
	defer progress.close()

	c, err := pptx.OpenPackage(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPackage, err)
	}
	paths := c.SlidePaths()
	if len(paths) == 0 {
		return nil, ErrNoSlides
	}

	canvas := pptx.CanvasSize(c, dpi)
	asm := pdfpage.New(canvas.Width, canvas.Height)

	props := c.CoreProperties()
	asm.SetMetadata(props.Title, props.Creator)

	progress.report(0)
	for i, path := range paths {
		if err := convertSlide(c, path, canvas, fonts, dpi, asm); err != nil {
			asm.AddErrorPage(i+1, err.Error())
		}
		progress.report((i + 1) * 100 / len(paths))
	}

	out, err := asm.Bytes()
	if err != nil {
		return nil, fmt.Errorf("assembling document: %w", err)
	}
	progress.close()
	return out, nil
}

// convertSlide runs one slide through extraction, rasterization, and page
// assembly. A panic anywhere in the slide pipeline is recovered and
// returned as the slide's failure reason.
func convertSlide(c *pptx.Container, path string, canvas pptx.Size, fonts *render.FontCache, dpi float64, asm *pdfpage.Assembler) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("slide rendering panicked: %v", r)
		}
	}()

	data, err := c.ReadBinary(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	rels, err := pptx.ResolveSlideRelationships(c, path)
	if err != nil {
		return fmt.Errorf("resolving relationships for %s: %w", path, err)
	}
	model, err := pptx.ExtractSlide(data, rels, c, dpi)
	if err != nil {
		return fmt.Errorf("extracting %s: %w", path, err)
	}

	img := render.Rasterize(model, canvas, fonts)
	return asm.AddSlidePage(img)
}

// progressNotifier delivers progress callbacks from a dedicated goroutine
// and enforces that delivered values only ever increase. Reporting never
// blocks: pending values are coalesced to the latest one, so a slow
// observer skips intermediate percentages instead of stalling the slide
// loop. The initial 0 and the terminal 100 are always delivered.
type progressNotifier struct {
	fn     func(int)
	ch     chan int
	done   chan struct{}
	closed bool
}

func newProgressNotifier(fn func(int)) *progressNotifier {
	n := &progressNotifier{
		fn:   fn,
		ch:   make(chan int, 1),
		done: make(chan struct{}),
	}
	go n.run()
	return n
}

func (n *progressNotifier) run() {
	defer close(n.done)
	last := -1
	for pct := range n.ch {
		if n.fn == nil || pct <= last {
			continue
		}
		if last < 0 && pct > 0 {
			// The initial 0 was coalesced away before delivery.
			n.deliver(0)
		}
		last = pct
		n.deliver(pct)
	}
}

func (n *progressNotifier) deliver(pct int) {
	defer func() { recover() }()
	n.fn(pct)
}

// report offers a value without blocking. When the observer has not yet
// consumed the previous value, the stale one is discarded and replaced.
func (n *progressNotifier) report(pct int) {
	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}
	for {
		select {
		case n.ch <- pct:
			return
		default:
		}
		select {
		case <-n.ch:
		default:
		}
	}
}

// close flushes pending notifications and waits for the delivery
// goroutine to finish. Safe to call more than once.
func (n *progressNotifier) close() {
	if n.closed {
		return
	}
	n.closed = true
	close(n.ch)
	<-n.done
}
