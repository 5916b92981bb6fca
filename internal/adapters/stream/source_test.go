package stream

import (
	"context"
	"strings"
	"testing"
)

func TestSource_DeliversNonEmptyLines(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"PAYLOAD_SUMMARY","frame":1}`,
		"",
		`{"type":"PAYLOAD_SUMMARY","frame":2}`,
		"",
	}, "\n")

	var got []string
	s := NewSource(strings.NewReader(input))
	err := s.Listen(context.Background(), func(data []byte) {
		got = append(got, string(data))
	})
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	want := []string{
		`{"type":"PAYLOAD_SUMMARY","frame":1}`,
		`{"type":"PAYLOAD_SUMMARY","frame":2}`,
	}
	if len(got) != len(want) {
		t.Fatalf("delivered %d records, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSource_StopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewSource(strings.NewReader("a\nb\nc\n"))
	delivered := 0
	err := s.Listen(ctx, func([]byte) { delivered++ })

	if err == nil {
		t.Error("Listen() = nil error on a canceled context")
	}
	if delivered != 0 {
		t.Errorf("delivered %d records after cancellation", delivered)
	}
}

func TestSource_OversizedLine(t *testing.T) {
	long := strings.Repeat("x", maxRecordBytes+1)

	s := NewSource(strings.NewReader(long + "\n"))
	err := s.Listen(context.Background(), func([]byte) {})
	if err == nil {
		t.Error("Listen() accepted a line over the record size limit")
	}
}
