package media

import (
	"context"
	"io"

	"github.com/pion/webrtc/v4"
	pionmedia "github.com/pion/webrtc/v4/pkg/media"

	"github.com/mockmate/interviewroom/internal/client/session"
)

// ScreenOptions fix the capture resolution, frame rate and encoder bitrate
// cap for screen content. Screen share is published as a single encoding,
// so the bitrate cap lives with the capture encoder. The screen source is
// video-only; system audio stays on the microphone track.
type ScreenOptions struct {
	Width      int
	Height     int
	FrameRate  int
	MaxBitrate int
}

func DefaultScreenOptions() ScreenOptions {
	return ScreenOptions{
		Width:      1920,
		Height:     1080,
		FrameRate:  30,
		MaxBitrate: 5_000_000,
	}
}

// Capturer abstracts platform media capture. Device enumeration and capture
// are inherently platform-specific; implementations live with the embedding
// application and NopCapturer serves headless use.
type Capturer interface {
	CaptureMicrophone(ctx context.Context) (session.SampleSource, error)
	CaptureCamera(ctx context.Context) (session.SampleSource, error)
	CaptureScreen(ctx context.Context, opts ScreenOptions) (session.SampleSource, error)
}

// Codec capabilities for published tracks.
var (
	MicrophoneCodec = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}
	CameraCodec     = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}
	ScreenCodec     = webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8}
)

// NopCapturer produces sources that never yield samples. The publication
// machinery behaves as with real devices, only silence flows.
type NopCapturer struct{}

func (NopCapturer) CaptureMicrophone(ctx context.Context) (session.SampleSource, error) {
	return newNopSource(), nil
}

func (NopCapturer) CaptureCamera(ctx context.Context) (session.SampleSource, error) {
	return newNopSource(), nil
}

func (NopCapturer) CaptureScreen(ctx context.Context, opts ScreenOptions) (session.SampleSource, error) {
	return newNopSource(), nil
}

type nopSource struct {
	closed chan struct{}
}

func newNopSource() *nopSource {
	return &nopSource{closed: make(chan struct{})}
}

// NextSample blocks until the source is closed.
func (n *nopSource) NextSample() (pionmedia.Sample, error) {
	<-n.closed
	return pionmedia.Sample{}, io.EOF
}

func (n *nopSource) Close() error {
	select {
	case <-n.closed:
	default:
		close(n.closed)
	}

	return nil
}
