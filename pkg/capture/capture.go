package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"viralreporter/pkg/browser"
	"viralreporter/pkg/logger"
)

// Options tune the capture behavior
type Options struct {
	// RowTolerance is the vertical slack, in pixels, for grouping tiles into
	// the first row
	RowTolerance float64

	// Margin is the horizontal padding added on both sides of the crop
	Margin float64

	// BottomPadding is extra viewport height granted while capturing so the
	// full grid renders
	BottomPadding int

	// ScrollPause is how long to wait after each scroll for lazy content
	ScrollPause time.Duration

	// ImageWait bounds the wait for result images to finish loading
	ImageWait time.Duration

	// ViewportWidth and ViewportHeight are the dimensions to restore after
	// the capture
	ViewportWidth  int
	ViewportHeight int
}

// Capturer takes cropped screenshots of result tile grids
type Capturer struct {
	opts Options
	log  logger.Logger
}

// NewCapturer creates a capturer
func NewCapturer(opts Options, log logger.Logger) *Capturer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Capturer{opts: opts, log: log}
}

const imagesReadyJS = `(timeoutMs) => new Promise((resolve) => {
	const deadline = Date.now() + timeoutMs;
	const ready = () => Array.from(document.images).every(
		(img) => img.complete && img.naturalWidth > 0);
	const check = () => {
		if (ready() || Date.now() >= deadline) {
			resolve(ready());
			return;
		}
		setTimeout(check, 100);
	};
	check();
})`

// CaptureGrid screenshots the region covering the given tiles. The page is
// scrolled to the last tile so lazy images load, then back to the top before
// the shot. Returns the PNG bytes.
func (c *Capturer) CaptureGrid(ctx context.Context, page *rod.Page, platform string, tiles []*rod.Element) ([]byte, error) {
	p := page.Context(ctx)

	if err := c.prepare(ctx, p, platform, tiles); err != nil {
		return nil, err
	}

	region, err := ComputeRegion(platform, tileBoxes(tiles), c.opts.RowTolerance, c.opts.Margin)
	if err != nil {
		return nil, err
	}
	return c.shoot(ctx, p, region)
}

// CaptureColumn screenshots a single-column results pane: the container
// element provides the horizontal extent, the tiles bound the height. The
// container itself usually runs far past the collected tiles, so its own
// height is ignored.
func (c *Capturer) CaptureColumn(ctx context.Context, page *rod.Page, platform string, container *rod.Element, tiles []*rod.Element) ([]byte, error) {
	p := page.Context(ctx)

	if err := c.prepare(ctx, p, platform, tiles); err != nil {
		return nil, err
	}

	shape, err := container.Shape()
	if err != nil {
		return nil, fmt.Errorf("failed to measure container: %w", err)
	}
	rect := shape.Box()
	if rect == nil {
		return nil, fmt.Errorf("container has no visible box")
	}
	containerBox := Box{X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height}

	region, err := ComputeColumnRegion(platform, containerBox, tileBoxes(tiles), c.opts.Margin)
	if err != nil {
		return nil, err
	}
	return c.shoot(ctx, p, region)
}

// prepare scrolls the last tile into view so lazy images load, returns to
// the top, and waits for result images to finish rendering
func (c *Capturer) prepare(ctx context.Context, p *rod.Page, platform string, tiles []*rod.Element) error {
	if len(tiles) > 0 {
		if err := tiles[len(tiles)-1].ScrollIntoView(); err != nil {
			c.log.WithError(err).Debug("Failed to scroll to last tile")
		}
		c.pause(ctx)
	}

	if _, err := p.Eval(`() => window.scrollTo(0, 0)`); err != nil {
		return fmt.Errorf("failed to scroll to top: %w", err)
	}
	c.pause(ctx)

	res, err := p.Eval(imagesReadyJS, c.opts.ImageWait.Milliseconds())
	if err != nil {
		c.log.WithError(err).Debug("Image readiness wait failed")
	} else if !res.Value.Bool() {
		c.log.WithField("platform", platform).Warn("Some result images did not finish loading in time")
	}
	return nil
}

// shoot takes the clipped screenshot, temporarily growing the viewport so
// the whole region is rendered
func (c *Capturer) shoot(ctx context.Context, p *rod.Page, region Region) ([]byte, error) {
	captureHeight := int(region.Height) + c.opts.BottomPadding
	if err := browser.SetViewport(p, c.opts.ViewportWidth, captureHeight); err != nil {
		return nil, err
	}
	defer func() {
		if err := browser.SetViewport(p, c.opts.ViewportWidth, c.opts.ViewportHeight); err != nil {
			c.log.WithError(err).Debug("Failed to restore viewport")
		}
	}()
	c.pause(ctx)

	data, err := p.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      region.X,
			Y:      region.Y,
			Width:  region.Width,
			Height: region.Height,
			Scale:  1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to take screenshot: %w", err)
	}
	return data, nil
}

func tileBoxes(tiles []*rod.Element) []Box {
	boxes := make([]Box, 0, len(tiles))
	for _, tile := range tiles {
		shape, err := tile.Shape()
		if err != nil {
			continue
		}
		rect := shape.Box()
		if rect == nil {
			continue
		}
		boxes = append(boxes, Box{X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height})
	}
	return boxes
}

func (c *Capturer) pause(ctx context.Context) {
	select {
	case <-time.After(c.opts.ScrollPause):
	case <-ctx.Done():
	}
}
