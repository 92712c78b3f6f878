package artifacts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pixal/internal/config"
	"pixal/internal/editspec"
	"pixal/internal/fileutil"
	"pixal/internal/services"
)

// Layout holds resolved artifact locations.
type Layout struct {
	root  string
	paths map[Kind]string
}

// LayoutFromConfig resolves every artifact path from configuration.
func LayoutFromConfig(cfg *config.Config) Layout {
	capsynth := cfg.CapsynthDir()
	return Layout{root: cfg.Paths.Workspace, paths: map[Kind]string{
		InputVideo:        cfg.Paths.InputVideo,
		StreamMeta:        cfg.Paths.StreamMeta,
		Transcript:        cfg.Paths.Transcript,
		ClipCandidates:    cfg.Paths.Clips,
		EditSpec:          cfg.Paths.EditSpec,
		AugmentedEditSpec: cfg.Paths.AugmentedEditSpec,
		Timeline:          cfg.Paths.Timeline,
		Shorts:            cfg.ShortsDir(),
		CaptionExport:     capsynth,
		ClipIndex:         filepath.Join(capsynth, ClipIndexName),
		ValidationReport:  filepath.Join(cfg.ValidationDir(), ReportName),
	}}
}

const (
	// ClipIndexName is the clip index file inside the caption export.
	ClipIndexName = "CLIPS_INDEX.json"
	// ReportName is the validation report file inside the validation dir.
	ReportName = "report.json"
	// ShortExt is the rendered clip container extension.
	ShortExt = ".mp4"
)

// Store provides typed access to workspace artifacts.
type Store struct {
	layout Layout
}

// NewStore builds a store over the configured workspace.
func NewStore(cfg *config.Config) *Store {
	return &Store{layout: LayoutFromConfig(cfg)}
}

// Path returns the location of an artifact kind.
func (s *Store) Path(kind Kind) string {
	return s.layout.paths[kind]
}

// Root returns the workspace directory.
func (s *Store) Root() string {
	return s.layout.root
}

// Rel returns path relative to the workspace using forward slashes, or the
// path unchanged when it lies outside the workspace.
func (s *Store) Rel(path string) string {
	rel, err := filepath.Rel(s.layout.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

// Abs resolves a workspace-relative path written by Rel.
func (s *Store) Abs(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.layout.root, filepath.FromSlash(path))
}

// ShortPath returns the rendered file for a clip id.
func (s *Store) ShortPath(clipID string) string {
	return filepath.Join(s.Path(Shorts), clipID+ShortExt)
}

// SubtitlePath returns the SRT file for a clip id.
func (s *Store) SubtitlePath(clipID string) string {
	return filepath.Join(s.Path(CaptionExport), "subtitles", clipID+".srt")
}

// ManifestPath returns the manifest file for a clip id.
func (s *Store) ManifestPath(clipID string) string {
	return filepath.Join(s.Path(CaptionExport), "manifests", clipID+".manifest.json")
}

// Exists reports whether the artifact is present on disk.
func (s *Store) Exists(kind Kind) bool {
	info, err := os.Stat(s.Path(kind))
	if err != nil {
		return false
	}
	return info.IsDir() == kind.IsDir()
}

// Require returns ErrMissingInput when the artifact is absent.
func (s *Store) Require(stage string, kind Kind) error {
	if s.Exists(kind) {
		return nil
	}
	return services.Wrap(services.ErrMissingInput, stage, "require "+kind.String(), s.Path(kind), nil)
}

// ListShorts returns rendered clip files in lexicographic order.
func (s *Store) ListShorts() ([]string, error) {
	entries, err := os.ReadDir(s.Path(Shorts))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list shorts: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !strings.EqualFold(filepath.Ext(entry.Name()), ShortExt) {
			continue
		}
		files = append(files, filepath.Join(s.Path(Shorts), entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ReadTranscript loads the transcript artifact.
func (s *Store) ReadTranscript() ([]editspec.TranscriptSegment, error) {
	return readArtifact(s, Transcript, editspec.DecodeTranscript)
}

// ReadCandidates loads the clip candidates artifact.
func (s *Store) ReadCandidates() ([]editspec.Candidate, error) {
	return readArtifact(s, ClipCandidates, editspec.DecodeCandidates)
}

// ReadEditSpec loads the crafted edit spec.
func (s *Store) ReadEditSpec() ([]editspec.Clip, error) {
	return readArtifact(s, EditSpec, editspec.DecodeClips)
}

// ReadAugmented loads the augmented edit spec.
func (s *Store) ReadAugmented() ([]editspec.Clip, error) {
	return readArtifact(s, AugmentedEditSpec, editspec.DecodeClips)
}

// ReadClipIndex loads CLIPS_INDEX.json.
func (s *Store) ReadClipIndex() ([]editspec.IndexEntry, error) {
	return readArtifact(s, ClipIndex, editspec.DecodeIndex)
}

// ReadStreamMeta loads optional stream metadata. A missing file yields the
// zero value and no error.
func (s *Store) ReadStreamMeta() (editspec.StreamMeta, error) {
	meta, err := readArtifact(s, StreamMeta, func(data []byte) (editspec.StreamMeta, error) {
		var m editspec.StreamMeta
		err := json.Unmarshal(data, &m)
		return m, err
	})
	if errors.Is(err, services.ErrMissingInput) {
		return editspec.StreamMeta{}, nil
	}
	return meta, err
}

// ReadManifest loads the manifest for a clip id.
func (s *Store) ReadManifest(clipID string) (editspec.Manifest, error) {
	path := s.ManifestPath(clipID)
	data, err := os.ReadFile(path)
	if err != nil {
		return editspec.Manifest{}, classifyRead("manifest", path, err)
	}
	var m editspec.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return editspec.Manifest{}, classifyDecode("manifest", path, err)
	}
	return m, nil
}

// WriteTranscript persists the transcript.
func (s *Store) WriteTranscript(segments []editspec.TranscriptSegment) error {
	return s.WriteJSON(Transcript, nonNil(segments))
}

// WriteCandidates persists clip candidates.
func (s *Store) WriteCandidates(candidates []editspec.Candidate) error {
	return s.WriteJSON(ClipCandidates, nonNil(candidates))
}

// WriteEditSpec persists the crafted edit spec.
func (s *Store) WriteEditSpec(clips []editspec.Clip) error {
	return s.writeClips(EditSpec, clips)
}

// WriteAugmented persists the augmented edit spec.
func (s *Store) WriteAugmented(clips []editspec.Clip) error {
	return s.writeClips(AugmentedEditSpec, clips)
}

// WriteClipIndex persists CLIPS_INDEX.json.
func (s *Store) WriteClipIndex(entries []editspec.IndexEntry) error {
	return s.WriteJSON(ClipIndex, nonNil(entries))
}

// WriteJSON atomically writes v as the artifact of the given kind.
func (s *Store) WriteJSON(kind Kind, v any) error {
	if kind.IsDir() {
		return fmt.Errorf("write %s: artifact is a directory", kind)
	}
	if err := fileutil.WriteJSONAtomic(s.Path(kind), v); err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	return nil
}

// WriteBytes atomically writes raw content as the artifact of the given kind.
func (s *Store) WriteBytes(kind Kind, data []byte) error {
	if kind.IsDir() {
		return fmt.Errorf("write %s: artifact is a directory", kind)
	}
	if err := fileutil.WriteFileAtomic(s.Path(kind), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	return nil
}

func (s *Store) writeClips(kind Kind, clips []editspec.Clip) error {
	if err := editspec.AssignIDs(clips); err != nil {
		return services.Wrap(services.ErrSchema, "", "write "+kind.String(), "", err)
	}
	data, err := editspec.EncodeClips(clips)
	if err != nil {
		return err
	}
	return s.WriteBytes(kind, data)
}

func readArtifact[T any](s *Store, kind Kind, decode func([]byte) (T, error)) (T, error) {
	var zero T
	path := s.Path(kind)
	data, err := os.ReadFile(path)
	if err != nil {
		return zero, classifyRead(kind.String(), path, err)
	}
	value, err := decode(data)
	if err != nil {
		return zero, classifyDecode(kind.String(), path, err)
	}
	return value, nil
}

func classifyRead(name, path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return services.Wrap(services.ErrMissingInput, "", "read "+name, path, nil)
	}
	return fmt.Errorf("read %s %s: %w", name, path, err)
}

func classifyDecode(name, path string, err error) error {
	if errors.Is(err, services.ErrSchema) {
		return fmt.Errorf("decode %s %s: %w", name, path, err)
	}
	return services.Wrap(services.ErrMalformedArtifact, "", "decode "+name, path, err)
}

func nonNil[T any](values []T) []T {
	if values == nil {
		return []T{}
	}
	return values
}
