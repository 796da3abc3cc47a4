// Package imageproc turns a raw upload into the stored working image and
// its thumbnail.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/disintegration/imaging"
)

var (
	// ErrUnreadableImage marks input whose dimensions cannot be determined
	// (corrupt bytes or an unsupported encoding).
	ErrUnreadableImage = errors.New("unreadable image")
	// ErrIO marks a failure to read the source or write a destination file.
	ErrIO = errors.New("image i/o failure")
)

// Options bound the working image and fix the thumbnail square.
type Options struct {
	MaxDimension  int
	ThumbnailSize int
}

// Result reports the dimensions of the working image that was written.
type Result struct {
	Width  int
	Height int
}

// Normalize reads the image at srcPath, writes a size-bounded working copy
// to workingPath and a centered square thumbnail to thumbPath, then removes
// srcPath when a distinct working file was produced.
//
// A source that already fits inside the bounding box is copied byte for
// byte; larger sources are scaled down to fit, preserving aspect ratio,
// never enlarged. The thumbnail is always scale-to-fill plus centered crop.
// On failure no destination files are left behind.
func Normalize(srcPath, workingPath, thumbPath string, opts Options) (*Result, error) {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return nil, fmt.Errorf("%w: read source: %v", ErrIO, err)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	res := &Result{Width: width, Height: height}
	if width <= opts.MaxDimension && height <= opts.MaxDimension {
		// Already within limits, keep the original bytes untouched.
		if err := os.WriteFile(workingPath, data, 0o644); err != nil {
			return nil, fmt.Errorf("%w: write working image: %v", ErrIO, err)
		}
	} else {
		resized := imaging.Fit(img, opts.MaxDimension, opts.MaxDimension, imaging.Lanczos)
		if err := imaging.Save(resized, workingPath); err != nil {
			_ = os.Remove(workingPath)
			return nil, fmt.Errorf("%w: save working image: %v", ErrIO, err)
		}
		rb := resized.Bounds()
		res.Width, res.Height = rb.Dx(), rb.Dy()
	}

	thumb := imaging.Fill(img, opts.ThumbnailSize, opts.ThumbnailSize, imaging.Center, imaging.Lanczos)
	if err := imaging.Save(thumb, thumbPath); err != nil {
		_ = os.Remove(workingPath)
		_ = os.Remove(thumbPath)
		return nil, fmt.Errorf("%w: save thumbnail: %v", ErrIO, err)
	}

	// The pre-resize original carries no value once a distinct working file
	// exists; remove it so failed or finished uploads never store duplicates.
	if srcPath != workingPath {
		_ = os.Remove(srcPath)
	}

	return res, nil
}
