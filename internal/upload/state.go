package upload

import (
	"errors"

	"go-trick-analyzer/internal/preview"
)

// StatusAccepted is the status shown after an image has been accepted.
const StatusAccepted = "Image uploaded successfully"

// ErrNoImage is returned by operations that need a live image.
var ErrNoImage = errors.New("no image uploaded")

// Image is the one live image: a local preview handle or, after a
// successful analysis, the durable URL the service returned.
type Image struct {
	handle    *preview.Handle
	remoteURL string
}

// IsLocal reports whether the image is still backed by a local preview.
func (i *Image) IsLocal() bool {
	return i.handle != nil
}

// Ref returns what a view should display: the preview ref or the remote URL.
func (i *Image) Ref() string {
	if i.handle != nil {
		return i.handle.Ref()
	}
	return i.remoteURL
}

// RemoteURL returns the durable URL, or "" for a local image.
func (i *Image) RemoteURL() string {
	return i.remoteURL
}

// State holds at most one image plus the latest non-error status message.
// It exclusively owns the preview handle and releases it exactly once, when
// the handle stops being referenced. State is not safe for concurrent use;
// the orchestrator serialises access.
type State struct {
	image  *Image
	status string
}

// NewState returns an empty state.
func NewState() *State {
	return &State{}
}

// SetAccepted releases any previous preview and makes handle the live image.
func (s *State) SetAccepted(handle *preview.Handle) {
	s.release()
	s.image = &Image{handle: handle}
	s.status = StatusAccepted
}

// ReplaceWithRemote swaps the live image to url, releasing the local preview.
func (s *State) ReplaceWithRemote(url string) error {
	if s.image == nil {
		return ErrNoImage
	}
	if s.image.handle != nil && s.image.handle.Ref() == url {
		return nil
	}
	s.release()
	s.image = &Image{remoteURL: url}
	return nil
}

// Clear releases the preview and forgets the image and status.
func (s *State) Clear() {
	s.release()
	s.image = nil
	s.status = ""
}

// Image returns the live image, or nil.
func (s *State) Image() *Image {
	return s.image
}

// LocalBytes returns the bytes of a locally-backed image. ok is false for a
// remote image.
func (s *State) LocalBytes() (data []byte, ok bool, err error) {
	if s.image == nil {
		return nil, false, ErrNoImage
	}
	if s.image.handle == nil {
		return nil, false, nil
	}
	data, err = s.image.handle.Bytes()
	return data, true, err
}

// Status returns the latest status message.
func (s *State) Status() string {
	return s.status
}

// ClearStatus drops the status message.
func (s *State) ClearStatus() {
	s.status = ""
}

func (s *State) release() {
	if s.image != nil && s.image.handle != nil {
		s.image.handle.Release()
		s.image.handle = nil
	}
}
