package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bobarin/newsvoice/internal/models"
)

// ErrSynthesis means every provider in the chain failed, or the result could
// not be converted to the configured output format.
var ErrSynthesis = errors.New("speech synthesis failed")

// attemptState is the per-call state of the provider fallback chain.
// Modeled explicitly (rather than nested error handling) so the fallback
// policy is testable on its own.
type attemptState int

const (
	stateAttemptPrimary attemptState = iota
	stateAttemptSecondary
	stateDone
	stateFailed
)

func (s attemptState) String() string {
	switch s {
	case stateAttemptPrimary:
		return "attempt-primary"
	case stateAttemptSecondary:
		return "attempt-secondary"
	case stateDone:
		return "done"
	default:
		return "failed"
	}
}

// AudioConverter transcodes audio between container formats.
// *FFmpegService is the production implementation.
type AudioConverter interface {
	Convert(ctx context.Context, data []byte, from, to models.AudioFormat) ([]byte, error)
}

// Synthesizer runs the two-provider fallback chain and normalizes the output
// format. One shot per provider per call; no retries within an attempt.
type Synthesizer struct {
	primary   TTSProvider // nil when no Gemini key is configured
	secondary TTSProvider
	converter AudioConverter
	format    models.AudioFormat
}

func NewSynthesizer(primary, secondary TTSProvider, converter AudioConverter, format models.AudioFormat) *Synthesizer {
	return &Synthesizer{
		primary:   primary,
		secondary: secondary,
		converter: converter,
		format:    format,
	}
}

// PrimaryAvailable reports whether a primary provider is configured.
func (s *Synthesizer) PrimaryAvailable() bool {
	return s.primary != nil
}

// Format is the output format every successful synthesis is normalized to.
func (s *Synthesizer) Format() models.AudioFormat {
	return s.format
}

// transition returns the state that follows a failed attempt.
func transition(state attemptState) attemptState {
	switch state {
	case stateAttemptPrimary:
		return stateAttemptSecondary
	case stateAttemptSecondary:
		return stateFailed
	default:
		return stateFailed
	}
}

// Synthesize converts text to audio, trying the primary provider first and
// the secondary on any failure. The returned result is already in the
// configured output format.
func (s *Synthesizer) Synthesize(ctx context.Context, text, lang string) (*TTSResult, error) {
	state := stateAttemptPrimary
	if s.primary == nil {
		log.Printf("[Synthesizer] No primary provider configured, using fallback directly")
		state = stateAttemptSecondary
	}

	var result *TTSResult
	var lastErr error

	for state != stateDone && state != stateFailed {
		provider := s.provider(state)

		res, err := provider.Synthesize(ctx, text, lang)
		if err != nil {
			log.Printf("[Synthesizer] %s (%s) failed: %v", state, provider.Engine(), err)
			lastErr = err
			state = transition(state)
			continue
		}

		result = res
		state = stateDone
	}

	if state == stateFailed {
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, lastErr)
	}

	return s.normalize(ctx, result)
}

func (s *Synthesizer) provider(state attemptState) TTSProvider {
	if state == stateAttemptPrimary {
		return s.primary
	}
	return s.secondary
}

// normalize converts the provider's native output into the configured format.
// A conversion failure is a synthesis failure, never silently ignored.
func (s *Synthesizer) normalize(ctx context.Context, result *TTSResult) (*TTSResult, error) {
	if result.Format == s.format {
		return result, nil
	}

	if s.converter == nil {
		return nil, fmt.Errorf("%w: no converter available for %s -> %s", ErrSynthesis, result.Format, s.format)
	}

	converted, err := s.converter.Convert(ctx, result.AudioData, result.Format, s.format)
	if err != nil {
		return nil, fmt.Errorf("%w: format conversion: %v", ErrSynthesis, err)
	}

	result.AudioData = converted
	result.Format = s.format
	return result, nil
}
