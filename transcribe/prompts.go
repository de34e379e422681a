package transcribe

import "fmt"

// videoPrompt returns the instruction sent alongside a video URL.
func videoPrompt(mode Mode) string {
	switch mode {
	case ModeSummarize:
		return "Summarize this video in clear prose. Cover the main points, " +
			"key arguments, and conclusions. Use paragraphs, not bullet lists."
	case ModeOutline:
		return "Create a detailed outline of this video with timestamps. " +
			"Use markdown headings for major sections and bullet points for " +
			"the content of each section. Include the timestamp where each " +
			"section begins."
	default:
		return "Transcribe this video completely and accurately. Include " +
			"timestamps in [MM:SS] format at natural paragraph breaks. " +
			"Output only the transcript text."
	}
}

// audioPrompt returns the instruction for a single audio chunk.
// part and total are 1-indexed; total 1 means the audio was not split.
func audioPrompt(mode Mode, part, total int) string {
	base := ""
	switch mode {
	case ModeSummarize:
		base = "Summarize this audio recording in clear prose. Cover the " +
			"main points, key arguments, and conclusions."
	case ModeOutline:
		base = "Create a detailed outline of this audio recording. Use " +
			"markdown headings for major sections and bullet points for " +
			"the content of each section."
	default:
		base = "Transcribe this audio completely and accurately. Output " +
			"only the transcript text."
	}

	if total > 1 {
		return fmt.Sprintf("%s This is part %d of %d of a longer recording; "+
			"do not add an introduction or conclusion, just process this part.",
			base, part, total)
	}
	return base
}

// captionSummaryPrompt asks the model to rework caption text into the
// requested mode. Captions alone only ever yield a transcript.
func captionSummaryPrompt(mode Mode) string {
	switch mode {
	case ModeSummarize:
		return "Summarize the following video transcript in clear prose:"
	case ModeOutline:
		return "Create a detailed markdown outline of the following video " +
			"transcript, preserving the timestamps:"
	}
	return ""
}
