package media_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mockmate/interviewroom/internal/client/media"
	"github.com/mockmate/interviewroom/internal/client/session"
	"github.com/mockmate/interviewroom/internal/domain"
)

type fakePublisher struct {
	mu sync.Mutex

	published   map[domain.TrackSource]bool
	enabled     map[domain.TrackSource]bool
	unpublished func(domain.TrackSource)

	publishErr   error
	unpublishErr error
	enableErr    error
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{
		published: make(map[domain.TrackSource]bool),
		enabled:   make(map[domain.TrackSource]bool),
	}
}

func (f *fakePublisher) Publish(source domain.TrackSource, src session.SampleSource, _ webrtc.RTPCodecCapability) error {
	if f.publishErr != nil {
		return f.publishErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.published[source] = true
	f.enabled[source] = true

	return nil
}

func (f *fakePublisher) Unpublish(source domain.TrackSource) error {
	if f.unpublishErr != nil {
		return f.unpublishErr
	}

	f.mu.Lock()
	delete(f.published, source)
	delete(f.enabled, source)
	fn := f.unpublished
	f.mu.Unlock()

	if fn != nil {
		fn(source)
	}

	return nil
}

func (f *fakePublisher) SetPublicationEnabled(source domain.TrackSource, enabled bool) error {
	if f.enableErr != nil {
		return f.enableErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.enabled[source] = enabled

	return nil
}

func (f *fakePublisher) OnLocalUnpublished(fn func(domain.TrackSource)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.unpublished = fn
}

func (f *fakePublisher) isPublished(source domain.TrackSource) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.published[source]
}

func (f *fakePublisher) isEnabled(source domain.TrackSource) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.enabled[source]
}

func TestController_EnableDefaults(t *testing.T) {
	publisher := newFakePublisher()
	controller := media.NewController(publisher, media.NopCapturer{})

	require.NoError(t, controller.EnableDefaults(context.Background()))

	assert.True(t, publisher.isPublished(domain.SourceMicrophone))
	assert.True(t, publisher.isPublished(domain.SourceCamera))
	assert.False(t, publisher.isPublished(domain.SourceScreen))
	assert.True(t, controller.MicrophoneOn())
	assert.True(t, controller.CameraOn())
	assert.False(t, controller.ScreenShareOn())
}

func TestController_ToggleMicrophone(t *testing.T) {
	publisher := newFakePublisher()
	controller := media.NewController(publisher, media.NopCapturer{})
	require.NoError(t, controller.EnableDefaults(context.Background()))

	on, err := controller.ToggleMicrophone(context.Background())
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, publisher.isEnabled(domain.SourceMicrophone))
	assert.True(t, publisher.isPublished(domain.SourceMicrophone), "muting disables the feed, it does not unpublish")

	on, err = controller.ToggleMicrophone(context.Background())
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, publisher.isEnabled(domain.SourceMicrophone))
}

func TestController_ToggleFailureKeepsState(t *testing.T) {
	publisher := newFakePublisher()
	controller := media.NewController(publisher, media.NopCapturer{})
	require.NoError(t, controller.EnableDefaults(context.Background()))

	publisher.enableErr = errors.New("sender gone")

	on, err := controller.ToggleCamera(context.Background())
	require.Error(t, err)
	assert.True(t, on, "displayed state must not flip when the operation failed")
	assert.True(t, controller.CameraOn())
}

func TestController_ScreenShareLifecycle(t *testing.T) {
	publisher := newFakePublisher()
	controller := media.NewController(publisher, media.NopCapturer{})

	on, err := controller.ToggleScreenShare(context.Background())
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, publisher.isPublished(domain.SourceScreen))

	on, err = controller.ToggleScreenShare(context.Background())
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, publisher.isPublished(domain.SourceScreen))
	assert.False(t, controller.ScreenShareOn())
}

type failingCapturer struct {
	media.NopCapturer
}

func (failingCapturer) CaptureScreen(context.Context, media.ScreenOptions) (session.SampleSource, error) {
	return nil, errors.New("permission denied")
}

func TestController_ScreenCaptureDenialIsRecoverable(t *testing.T) {
	publisher := newFakePublisher()
	controller := media.NewController(publisher, failingCapturer{})

	on, err := controller.ToggleScreenShare(context.Background())
	require.Error(t, err)
	assert.False(t, on)
	assert.False(t, controller.ScreenShareOn())
	assert.False(t, publisher.isPublished(domain.SourceScreen), "nothing published on capture failure")
}

func TestController_PlatformEndedScreenShare(t *testing.T) {
	publisher := newFakePublisher()
	controller := media.NewController(publisher, media.NopCapturer{})

	on, err := controller.ToggleScreenShare(context.Background())
	require.NoError(t, err)
	require.True(t, on)

	// The platform's own stop control ends the capture out of band; the
	// publisher reports the unpublish and the toggle follows.
	require.NoError(t, publisher.Unpublish(domain.SourceScreen))

	assert.False(t, controller.ScreenShareOn())
	assert.False(t, publisher.isPublished(domain.SourceScreen))
}
