package media

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/mockmate/interviewroom/internal/application/constant"
	"github.com/mockmate/interviewroom/internal/client/session"
	"github.com/mockmate/interviewroom/internal/domain"
)

// Publisher is the slice of the session the controller drives.
type Publisher interface {
	Publish(source domain.TrackSource, src session.SampleSource, codec webrtc.RTPCodecCapability) error
	Unpublish(source domain.TrackSource) error
	SetPublicationEnabled(source domain.TrackSource, enabled bool) error
	OnLocalUnpublished(fn func(domain.TrackSource))
}

// Controller keeps the displayed device state truthful: a toggle only flips
// after the underlying publication call succeeded, and a screen share ended
// by the platform flips the toggle back off without user action.
type Controller struct {
	publisher Publisher
	capturer  Capturer

	screenOpts ScreenOptions

	mu       sync.Mutex
	micOn    bool
	camOn    bool
	screenOn bool
}

func NewController(publisher Publisher, capturer Capturer) *Controller {
	c := &Controller{
		publisher:  publisher,
		capturer:   capturer,
		screenOpts: DefaultScreenOptions(),
	}

	publisher.OnLocalUnpublished(c.handleLocalUnpublished)

	return c
}

// EnableDefaults publishes camera and microphone, the default state on
// entering the room.
func (c *Controller) EnableDefaults(ctx context.Context) error {
	mic, err := c.capturer.CaptureMicrophone(ctx)
	if err != nil {
		return fmt.Errorf("capture microphone: %w", err)
	}

	if err := c.publisher.Publish(domain.SourceMicrophone, mic, MicrophoneCodec); err != nil {
		return fmt.Errorf("publish microphone: %w", err)
	}

	cam, err := c.capturer.CaptureCamera(ctx)
	if err != nil {
		return fmt.Errorf("capture camera: %w", err)
	}

	if err := c.publisher.Publish(domain.SourceCamera, cam, CameraCodec); err != nil {
		return fmt.Errorf("publish camera: %w", err)
	}

	c.mu.Lock()
	c.micOn = true
	c.camOn = true
	c.mu.Unlock()

	return nil
}

func (c *Controller) ToggleMicrophone(ctx context.Context) (bool, error) {
	c.mu.Lock()
	target := !c.micOn
	c.mu.Unlock()

	if err := c.publisher.SetPublicationEnabled(domain.SourceMicrophone, target); err != nil {
		return c.MicrophoneOn(), err
	}

	c.mu.Lock()
	c.micOn = target
	c.mu.Unlock()

	return target, nil
}

func (c *Controller) ToggleCamera(ctx context.Context) (bool, error) {
	c.mu.Lock()
	target := !c.camOn
	c.mu.Unlock()

	if err := c.publisher.SetPublicationEnabled(domain.SourceCamera, target); err != nil {
		return c.CameraOn(), err
	}

	c.mu.Lock()
	c.camOn = target
	c.mu.Unlock()

	return target, nil
}

// ToggleScreenShare publishes or unpublishes screen capture. Capture
// permission denial is recoverable: the toggle stays off and the session
// continues.
func (c *Controller) ToggleScreenShare(ctx context.Context) (bool, error) {
	c.mu.Lock()
	on := c.screenOn
	c.mu.Unlock()

	if on {
		if err := c.publisher.Unpublish(domain.SourceScreen); err != nil {
			return true, err
		}

		// State is reset by handleLocalUnpublished, but do not rely on
		// callback ordering for the value we return.
		c.mu.Lock()
		c.screenOn = false
		c.mu.Unlock()

		return false, nil
	}

	src, err := c.capturer.CaptureScreen(ctx, c.screenOpts)
	if err != nil {
		slog.Warn("screen capture failed", slog.Any(constant.Error, err))
		return false, err
	}

	if err := c.publisher.Publish(domain.SourceScreen, src, ScreenCodec); err != nil {
		if closeErr := src.Close(); closeErr != nil {
			slog.Warn("close screen source", slog.Any(constant.Error, closeErr))
		}

		slog.Warn("publish screen share failed", slog.Any(constant.Error, err))
		return false, err
	}

	c.mu.Lock()
	c.screenOn = true
	c.mu.Unlock()

	return true, nil
}

func (c *Controller) MicrophoneOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.micOn
}

func (c *Controller) CameraOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.camOn
}

func (c *Controller) ScreenShareOn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.screenOn
}

func (c *Controller) handleLocalUnpublished(source domain.TrackSource) {
	if source != domain.SourceScreen {
		return
	}

	c.mu.Lock()
	c.screenOn = false
	c.mu.Unlock()
}
