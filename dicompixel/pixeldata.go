package dicompixel

import (
	"fmt"

	"github.com/cocosip/go-dicom/pkg/imaging/imagetypes"
)

// FrameSource yields the frames of one image and the metadata they share.
// imaging.DicomPixelData satisfies it.
type FrameSource interface {
	GetFrame(frameIndex int) ([]byte, error)
	GetFrameInfo() *imagetypes.FrameInfo
}

// PixelData keeps frames in memory for callers that already hold the bytes,
// such as tests or frames split out of another container.
type PixelData struct {
	info   *imagetypes.FrameInfo
	frames [][]byte
}

// NewPixelData returns a PixelData without frames.
func NewPixelData(info *imagetypes.FrameInfo) *PixelData {
	return &PixelData{info: info}
}

// GetFrame returns frame frameIndex, counting from 0.
func (p *PixelData) GetFrame(frameIndex int) ([]byte, error) {
	if frameIndex < 0 || frameIndex >= len(p.frames) {
		return nil, fmt.Errorf("%w: index %d of %d", ErrFrameNotFound, frameIndex, len(p.frames))
	}
	return p.frames[frameIndex], nil
}

// AddFrame stores data as the next frame. The slice is kept, not copied.
func (p *PixelData) AddFrame(data []byte) error {
	p.frames = append(p.frames, data)
	return nil
}

func (p *PixelData) FrameCount() int {
	return len(p.frames)
}

func (p *PixelData) GetFrameInfo() *imagetypes.FrameInfo {
	return p.info
}
