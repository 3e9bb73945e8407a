package calc

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseToken(t *testing.T) {
	tests := []struct {
		r    rune
		want Input
		ok   bool
	}{
		{'7', Digit('7'), true},
		{'.', Digit('.'), true},
		{'+', Operation(OpAdd), true},
		{'-', Operation(OpSubtract), true},
		{'*', Operation(OpMultiply), true},
		{'/', Operation(OpDivide), true},
		{'=', ComputeInput(), true},
		{'<', DeleteInput(), true},
		{'C', ClearInput(), true},
		{'%', Input{}, false},
		{'x', Input{}, false},
	}
	for _, tc := range tests {
		got, ok := ParseToken(tc.r)
		require.Equal(t, tc.ok, ok, "token %q", tc.r)
		require.Equal(t, tc.want, got, "token %q", tc.r)
	}
}

func TestFeedEvaluatesScript(t *testing.T) {
	tests := []struct {
		script string
		want   Snapshot
	}{
		{"12345.67", Snapshot{Current: "12,345.67"}},
		{"5 + 3 *", Snapshot{Previous: "8 *"}},
		{"3+4+5=", Snapshot{Current: "12"}},
		{"6/0=", Snapshot{Current: "∞"}},
		{"12<<9", Snapshot{Current: "9"}},
		{"9*9c", Snapshot{}},
		{"1..2", Snapshot{Current: "1.2"}},
		{"2^3=", Snapshot{Current: "23"}},
	}
	for _, tc := range tests {
		e := newTestEngine()
		Feed(e, tc.script)
		require.Equal(t, tc.want, e.RenderSnapshot(), "script %q", tc.script)
	}
}

func TestApplyIgnoresUnknownKind(t *testing.T) {
	e := newTestEngine()
	Feed(e, "42")
	e.Apply(Input{})
	e.Apply(Input{Kind: InputKind(99)})
	require.Equal(t, State{Current: "42"}, e.State())
}

func TestLineSinkWritesBothLines(t *testing.T) {
	var buf bytes.Buffer
	sink := &LineSink{W: &buf}
	e := newTestEngine()
	Feed(e, "1500-")
	e.Refresh(sink)
	Feed(e, "250")
	e.Refresh(sink)
	require.NoError(t, sink.Err())
	require.Equal(t, "1,500 -\n\n1,500 -\n250\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestLineSinkKeepsFirstError(t *testing.T) {
	sink := &LineSink{W: failingWriter{}}
	sink.Display("1", "")
	sink.Display("2", "1 +")
	require.ErrorContains(t, sink.Err(), "write current operand: disk full")
}
