package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"voxsmith/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "narration")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.ElevenLabs.Voice = "Test Voice"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithVoice overrides the configured voice name.
func WithVoice(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.ElevenLabs.Voice = name
	}
}

// WithAudioOnly enables audio-only runs on the test config.
func WithAudioOnly() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Run.AudioOnly = true
	}
}

// ffmpegStub mimics the normalize invocation: it copies the file named by
// the -i flag to the final argument.
const ffmpegStub = `#!/bin/sh
in=""
prev=""
out=""
for arg in "$@"; do
  if [ "$prev" = "-i" ]; then
    in="$arg"
  fi
  prev="$arg"
  out="$arg"
done
if [ -n "$in" ] && [ -n "$out" ]; then
  cp "$in" "$out"
fi
exit 0
`

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg is stubbed. The ffmpeg
// stub copies its input file to its output path so transcode results
// exist on disk.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		for _, name := range names {
			script := "#!/bin/sh\nexit 0\n"
			if name == "ffmpeg" {
				script = ffmpegStub
			}
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.OutputDir)
}
