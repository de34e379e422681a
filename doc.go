// Package yt2md converts YouTube playlists into markdown transcript files.
//
// Each video is transcribed by the cheapest method that works: caption
// tracks, direct video processing by a hosted model, or local audio
// extraction with chunked model transcription. Videos are processed
// sequentially in playlist order and per-video failures never abort a run;
// they are recorded in the playlist summary instead.
package yt2md
