package deps

import "strings"

// Requirements lists every binary a narration run may invoke. FFmpeg is
// the only entry today; the list shape keeps run preflight and the
// status command on one probe path.
func Requirements(ffmpegBinary string) []Requirement {
	name := strings.TrimSpace(ffmpegBinary)
	if name == "" {
		name = "ffmpeg"
	}
	return []Requirement{{
		Name:        "FFmpeg",
		Command:     name,
		Description: "Normalizes synthesized narration audio",
	}}
}

// CheckFFmpeg probes the transcoder binary a run would execute. An
// explicitly configured path wins; otherwise "ffmpeg" is resolved from
// PATH. An unavailable transcoder is a fatal preflight condition.
func CheckFFmpeg(configured string) Status {
	return CheckBinaries(Requirements(configured))[0]
}
