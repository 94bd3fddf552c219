package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"

	"github.com/mockmate/interviewroom/internal/application/constant"
	"github.com/mockmate/interviewroom/internal/domain"
)

// SampleSource feeds encoded media samples into a published track. A source
// returning io.EOF ends the publication, which is how a platform-initiated
// capture stop (the browser-level "Stop sharing") surfaces.
type SampleSource interface {
	NextSample() (media.Sample, error)
	Close() error
}

type publication struct {
	source domain.TrackSource
	track  *webrtc.TrackLocalStaticSample
	sender *webrtc.RTPSender
	src    SampleSource

	enabled  atomic.Bool
	stopOnce sync.Once
	done     chan struct{}
}

func (p *publication) stop() {
	p.stopOnce.Do(func() {
		close(p.done)

		if err := p.src.Close(); err != nil {
			slog.Warn("close sample source", slog.Any(constant.Error, err))
		}
	})
}

// OnLocalUnpublished registers the observer for publications removed out of
// band, e.g. a screen capture ended by the platform rather than the user.
func (s *Session) OnLocalUnpublished(fn func(domain.TrackSource)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onLocalUnpublished = fn
}

// Publish adds a local track fed from src and renegotiates. One publication
// per source; screen content is published as a single encoding (no simulcast
// layers), with the bitrate cap enforced by the capture source itself.
func (s *Session) Publish(source domain.TrackSource, src SampleSource, codec webrtc.RTPCodecCapability) error {
	s.mu.Lock()

	if s.pc == nil {
		s.mu.Unlock()
		return errors.New("not connected")
	}

	if _, exists := s.pubs[source]; exists {
		s.mu.Unlock()
		return fmt.Errorf("source %s already published", source)
	}

	track, err := webrtc.NewTrackLocalStaticSample(codec, string(source), s.identity)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("create local track: %w", err)
	}

	sender, err := s.pc.AddTrack(track)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("add local track: %w", err)
	}

	pub := &publication{
		source: source,
		track:  track,
		sender: sender,
		src:    src,
		done:   make(chan struct{}),
	}
	pub.enabled.Store(true)

	s.pubs[source] = pub
	s.mu.Unlock()

	go s.pump(pub)

	if err := s.negotiate(); err != nil {
		return fmt.Errorf("renegotiate after publish: %w", err)
	}

	return nil
}

// Unpublish removes the local track, renegotiates and notifies the
// local-unpublished observer.
func (s *Session) Unpublish(source domain.TrackSource) error {
	s.mu.Lock()

	pub, ok := s.pubs[source]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("source %s not published", source)
	}

	delete(s.pubs, source)
	pc := s.pc
	observer := s.onLocalUnpublished
	s.mu.Unlock()

	pub.stop()

	if pc != nil {
		if err := pc.RemoveTrack(pub.sender); err != nil {
			slog.Warn("remove track", slog.Any(constant.Error, err))
		}

		if err := s.negotiate(); err != nil {
			slog.Warn("renegotiate after unpublish", slog.Any(constant.Error, err))
		}
	}

	if observer != nil {
		observer(source)
	}

	return nil
}

// SetPublicationEnabled pauses or resumes a publication without tearing the
// track down. Disabled publications keep draining the source so capture
// timing is preserved; the samples are dropped.
func (s *Session) SetPublicationEnabled(source domain.TrackSource, enabled bool) error {
	s.mu.Lock()
	pub, ok := s.pubs[source]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("source %s not published", source)
	}

	pub.enabled.Store(enabled)

	return nil
}

func (s *Session) pump(pub *publication) {
	for {
		select {
		case <-pub.done:
			return
		default:
		}

		sample, err := pub.src.NextSample()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				slog.Warn("read sample", slog.Any(constant.Error, err), slog.String("source", string(pub.source)))
			}

			// Capture ended out of band: unpublish so observers learn
			// about it exactly as if the user had stopped it.
			if err := s.Unpublish(pub.source); err != nil {
				slog.Warn("unpublish ended source", slog.Any(constant.Error, err))
			}

			return
		}

		if !pub.enabled.Load() {
			continue
		}

		if err := pub.track.WriteSample(sample); err != nil {
			slog.Warn("write sample", slog.Any(constant.Error, err))
		}
	}
}
