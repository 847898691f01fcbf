package compile

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"motionforge/internal/analysis"
	"motionforge/internal/logging"
	"motionforge/internal/mission"
	"motionforge/internal/services"
	"motionforge/internal/services/whisper"
)

// AudioPreparer readies the source audio for the speech collaborators.
type AudioPreparer interface {
	ExtractAudio(ctx context.Context, source, dest string) error
	NormalizeLoudness(ctx context.Context, source, dest string) error
}

// Transcriber is the whole-file speech-to-text collaborator.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputDir string) (whisper.Result, error)
}

// CueGenerator is the phoneme-timing collaborator.
type CueGenerator interface {
	Generate(ctx context.Context, audioPath string) ([]mission.Cue, error)
}

// Builder merges the raw analysis document with the speech and phoneme
// contributions into a mission.
type Builder struct {
	audio    AudioPreparer
	speech   Transcriber
	cues     CueGenerator
	rewriter *Rewriter
	logger   *slog.Logger
}

// NewBuilder constructs a mission builder. audio, speech and cues may be nil
// when the caller knows the video carries no usable audio track.
func NewBuilder(audio AudioPreparer, speech Transcriber, cues CueGenerator, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Builder{
		audio:    audio,
		speech:   speech,
		cues:     cues,
		rewriter: NewRewriter(),
		logger:   logger,
	}
}

// Build produces a mission from the raw analysis document. A video with an
// audio track compiles in DRAMA mode: the audio is extracted, normalized,
// transcribed, rewritten, and handed to the phoneme collaborator. Without
// audio the mission is SILENT with no speech or mouth contribution.
//
// Transcription failure aborts the build; phoneme generation failure does
// not — the mouth status records it and fusion falls back to the continuous
// ratio signal.
func (b *Builder) Build(ctx context.Context, doc *analysis.Document, workDir string) (*mission.Mission, error) {
	if doc == nil {
		return nil, fmt.Errorf("compile: nil analysis document")
	}

	m := Assemble(doc, uuid.NewString(), time.Now().UTC())
	if m.Metadata.Mode == mission.ModeSilent {
		b.logger.Info("mission compiled silent", logging.String("mission_id", m.Metadata.MissionID))
		return m, nil
	}

	audioPath, err := b.prepareAudio(ctx, doc.Media.SourcePath, workDir)
	if err != nil {
		return nil, err
	}

	result, err := b.speech.Transcribe(ctx, audioPath, workDir)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "compile", "transcribe", "transcription failed", err)
	}
	m.Speech = buildSpeech(result, b.rewriter)

	cues, err := b.cues.Generate(ctx, audioPath)
	if err != nil {
		b.logger.Warn("phoneme generation failed, fusion will fall back",
			logging.String("mission_id", m.Metadata.MissionID),
			logging.Error(err),
		)
		m.Mouth = &mission.Mouth{Status: mission.StatusFailed}
	} else {
		m.Mouth = &mission.Mouth{Status: mission.StatusGenerated, Cues: cues}
	}

	b.logger.Info("mission compiled",
		logging.String("mission_id", m.Metadata.MissionID),
		logging.String("mode", m.Metadata.Mode),
		logging.Int("actors", len(m.Actors)),
		logging.Int("cues", len(m.Mouth.Cues)),
	)
	return m, nil
}

// Assemble builds the mission skeleton from analysis data alone. Pure so the
// merge semantics are testable without collaborators: sparse actors are kept
// sparse, a zero-actor document yields an empty actors map, and the mode
// follows audio presence.
func Assemble(doc *analysis.Document, missionID string, now time.Time) *mission.Mission {
	mode := mission.ModeSilent
	if doc.Media.HasAudio {
		mode = mission.ModeDrama
	}

	actors := make(map[string]mission.Actor, len(doc.Actors))
	for id, actor := range doc.Actors {
		actors[id] = actor
	}

	return &mission.Mission{
		Metadata: mission.Metadata{
			MissionID:         missionID,
			Mode:              mode,
			SourcePath:        doc.Media.SourcePath,
			FPS:               doc.Media.FPS,
			Width:             doc.Media.Width,
			Height:            doc.Media.Height,
			DurationSeconds:   doc.Media.DurationSeconds,
			FrameCount:        doc.Media.FrameCount,
			MaxActorsObserved: doc.MaxActorsObserved,
			CreatedAt:         now.Format(time.RFC3339),
		},
		CameraMotion: append([]mission.CameraMotionSample(nil), doc.CameraMotion...),
		Actors:       actors,
	}
}

func (b *Builder) prepareAudio(ctx context.Context, sourcePath, workDir string) (string, error) {
	if b.audio == nil || b.speech == nil || b.cues == nil {
		return "", services.Wrap(services.ErrConfiguration, "compile", "prepare-audio",
			"audio collaborators not configured for a DRAMA-mode video", nil)
	}

	rawAudio := filepath.Join(workDir, "audio_raw.wav")
	if err := b.audio.ExtractAudio(ctx, sourcePath, rawAudio); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "compile", "extract-audio", "audio extraction failed", err)
	}
	normalized := filepath.Join(workDir, "audio.wav")
	if err := b.audio.NormalizeLoudness(ctx, rawAudio, normalized); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "compile", "normalize-audio", "loudness normalization failed", err)
	}
	return normalized, nil
}

func buildSpeech(result whisper.Result, rewriter *Rewriter) mission.Speech {
	rewritten, applied := rewriter.Rewrite(result.Text)
	segments := make([]mission.SpeechSegment, len(result.Segments))
	for i, seg := range result.Segments {
		segments[i] = mission.SpeechSegment{Start: seg.Start, End: seg.End, Text: seg.Text}
	}
	return mission.Speech{
		OriginalText:   result.Text,
		RewrittenText:  rewritten,
		RewriteApplied: applied,
		Segments:       segments,
	}
}
