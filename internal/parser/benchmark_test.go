package parser

import (
	"strings"
	"testing"
)

// BenchmarkClassify_PlayerResult benchmarks classifying a player result line.
func BenchmarkClassify_PlayerResult(b *testing.B) {
	line := "13:50:45.82    PlayerInfo - SimID:1001, raceID:4, teamID:0, uid:0:11718717, result:3:PS_KILLED"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Classify(line)
	}
}

// BenchmarkClassify_FrameMarker benchmarks the most frequent retained line.
func BenchmarkClassify_FrameMarker(b *testing.B) {
	line := "12:40:06.00   GAME -- Frame 1200 : 12:42:06"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Classify(line)
	}
}

// BenchmarkRetain_Noise benchmarks discarding an irrelevant diagnostic line.
func BenchmarkRetain_Noise(b *testing.B) {
	line := "12:40:06.00   SOUND -- Failed to find bank 'data:sound/speech/race_marine/unit_tactical_marine'"

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Retain(line)
	}
}

// BenchmarkRetain_LongLine benchmarks the filter on a very long line.
func BenchmarkRetain_LongLine(b *testing.B) {
	line := strings.Repeat("x", 4096)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Retain(line)
	}
}
