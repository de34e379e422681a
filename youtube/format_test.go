package youtube

import "testing"

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "[00:00]"},
		{59.9, "[00:59]"},
		{61, "[01:01]"},
		{600, "[10:00]"},
		{3599, "[59:59]"},
		{3600, "[1:00:00]"},
		{7322, "[2:02:02]"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatTimestamp(tt.seconds); got != tt.want {
				t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestFormatTranscript(t *testing.T) {
	entries := []TranscriptEntry{
		{Start: 0, Duration: 2, Text: "first cue"},
		{Start: 65, Duration: 3, Text: "second cue"},
	}

	withTS := FormatTranscript(entries, true)
	wantTS := "[00:00] first cue\n[01:05] second cue"
	if withTS != wantTS {
		t.Errorf("FormatTranscript(timestamps) = %q, want %q", withTS, wantTS)
	}

	plain := FormatTranscript(entries, false)
	wantPlain := "first cue second cue"
	if plain != wantPlain {
		t.Errorf("FormatTranscript(plain) = %q, want %q", plain, wantPlain)
	}

	if got := FormatTranscript(nil, true); got != "" {
		t.Errorf("FormatTranscript(nil) = %q, want empty", got)
	}
}

func TestVideoMetadataStrings(t *testing.T) {
	m := &VideoMetadata{Duration: 3723, UploadDate: "20240115"}

	if got := m.DurationString(); got != "1:02:03" {
		t.Errorf("DurationString() = %q, want %q", got, "1:02:03")
	}
	if got := m.PublishedString(); got != "2024-01-15" {
		t.Errorf("PublishedString() = %q, want %q", got, "2024-01-15")
	}

	short := &VideoMetadata{Duration: 185, UploadDate: "bad"}
	if got := short.DurationString(); got != "3:05" {
		t.Errorf("DurationString() = %q, want %q", got, "3:05")
	}
	if got := short.PublishedString(); got != "bad" {
		t.Errorf("PublishedString() = %q, want %q", got, "bad")
	}
}
