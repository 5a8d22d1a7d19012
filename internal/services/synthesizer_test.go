package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bobarin/newsvoice/internal/models"
)

type fakeProvider struct {
	engine models.Engine
	format models.AudioFormat
	data   []byte
	err    error
	calls  int
}

func (f *fakeProvider) Synthesize(ctx context.Context, text, lang string) (*TTSResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &TTSResult{AudioData: f.data, Format: f.format, Engine: f.engine}, nil
}

func (f *fakeProvider) Engine() models.Engine { return f.engine }

type fakeConverter struct {
	err   error
	calls int
}

func (f *fakeConverter) Convert(ctx context.Context, data []byte, from, to models.AudioFormat) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte("converted:"), data...), nil
}

func TestSynthesizePrimarySucceeds(t *testing.T) {
	primary := &fakeProvider{engine: models.EngineGemini, format: models.FormatMP3, data: []byte("p")}
	secondary := &fakeProvider{engine: models.EngineGTranslate, format: models.FormatMP3, data: []byte("s")}

	s := NewSynthesizer(primary, secondary, nil, models.FormatMP3)

	result, err := s.Synthesize(context.Background(), "hello", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Engine != models.EngineGemini {
		t.Errorf("expected primary engine, got %s", result.Engine)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary should not be called when primary succeeds, got %d calls", secondary.calls)
	}
}

func TestSynthesizeFallsBackOnPrimaryFailure(t *testing.T) {
	primary := &fakeProvider{engine: models.EngineGemini, err: fmt.Errorf("quota exceeded")}
	secondary := &fakeProvider{engine: models.EngineGTranslate, format: models.FormatMP3, data: []byte("s")}

	s := NewSynthesizer(primary, secondary, nil, models.FormatMP3)

	result, err := s.Synthesize(context.Background(), "hello", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Engine != models.EngineGTranslate {
		t.Errorf("expected fallback engine, got %s", result.Engine)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("expected one shot per provider, got primary=%d secondary=%d", primary.calls, secondary.calls)
	}
}

func TestSynthesizeBothFail(t *testing.T) {
	primary := &fakeProvider{engine: models.EngineGemini, err: fmt.Errorf("down")}
	secondary := &fakeProvider{engine: models.EngineGTranslate, err: fmt.Errorf("also down")}

	s := NewSynthesizer(primary, secondary, nil, models.FormatMP3)

	_, err := s.Synthesize(context.Background(), "hello", "en")
	if !errors.Is(err, ErrSynthesis) {
		t.Fatalf("expected ErrSynthesis, got %v", err)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Errorf("expected exactly one attempt per provider, got primary=%d secondary=%d", primary.calls, secondary.calls)
	}
}

func TestSynthesizeSkipsAbsentPrimary(t *testing.T) {
	secondary := &fakeProvider{engine: models.EngineGTranslate, format: models.FormatMP3, data: []byte("s")}

	s := NewSynthesizer(nil, secondary, nil, models.FormatMP3)

	result, err := s.Synthesize(context.Background(), "hello", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Engine != models.EngineGTranslate {
		t.Errorf("expected fallback engine, got %s", result.Engine)
	}
	if s.PrimaryAvailable() {
		t.Error("PrimaryAvailable should be false")
	}
}

func TestSynthesizeConvertsFormat(t *testing.T) {
	// Provider outputs WAV, configured format is MP3
	primary := &fakeProvider{engine: models.EngineGemini, format: models.FormatWAV, data: []byte("wav")}
	secondary := &fakeProvider{engine: models.EngineGTranslate, format: models.FormatMP3, data: []byte("s")}
	conv := &fakeConverter{}

	s := NewSynthesizer(primary, secondary, conv, models.FormatMP3)

	result, err := s.Synthesize(context.Background(), "hello", "en")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conv.calls != 1 {
		t.Errorf("expected one conversion, got %d", conv.calls)
	}
	if result.Format != models.FormatMP3 {
		t.Errorf("expected normalized format mp3, got %s", result.Format)
	}
	if string(result.AudioData) != "converted:wav" {
		t.Errorf("unexpected converted data: %q", result.AudioData)
	}
}

func TestSynthesizeNoConversionWhenFormatsMatch(t *testing.T) {
	primary := &fakeProvider{engine: models.EngineGemini, format: models.FormatMP3, data: []byte("p")}
	conv := &fakeConverter{}

	s := NewSynthesizer(primary, &fakeProvider{engine: models.EngineGTranslate}, conv, models.FormatMP3)

	if _, err := s.Synthesize(context.Background(), "hello", "en"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conv.calls != 0 {
		t.Errorf("expected no conversion, got %d", conv.calls)
	}
}

func TestSynthesizeConversionFailureIsSynthesisError(t *testing.T) {
	primary := &fakeProvider{engine: models.EngineGemini, format: models.FormatWAV, data: []byte("wav")}
	conv := &fakeConverter{err: fmt.Errorf("ffmpeg missing")}

	s := NewSynthesizer(primary, &fakeProvider{engine: models.EngineGTranslate}, conv, models.FormatMP3)

	_, err := s.Synthesize(context.Background(), "hello", "en")
	if !errors.Is(err, ErrSynthesis) {
		t.Fatalf("expected ErrSynthesis on conversion failure, got %v", err)
	}
}

func TestTransition(t *testing.T) {
	if got := transition(stateAttemptPrimary); got != stateAttemptSecondary {
		t.Errorf("primary failure should move to secondary, got %s", got)
	}
	if got := transition(stateAttemptSecondary); got != stateFailed {
		t.Errorf("secondary failure should move to failed, got %s", got)
	}
}
