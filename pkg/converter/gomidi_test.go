package converter

import (
	"bytes"
	"testing"

	"github.com/james-see/smfcodec/pkg/smf"
)

func channelEvents(t smf.TrackChunk) []smf.ChannelVoice {
	var out []smf.ChannelVoice
	for _, ev := range t.Events {
		if m, ok := ev.Message.(smf.ChannelVoice); ok {
			m.Running = false
			out = append(out, m)
		}
	}
	return out
}

func TestGomidiRoundTrip(t *testing.T) {
	chunks := testChunks(t)
	s, err := ToSMF(chunks)
	if err != nil {
		t.Fatalf("ToSMF() error = %v", err)
	}
	if len(s.Tracks) != 2 {
		t.Fatalf("ToSMF() has %d tracks, want 2", len(s.Tracks))
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo() error = %v", err)
	}
	decoded, err := smf.DecodeAll(buf.Bytes(), smf.DecodeOptions{Strict: true})
	if err != nil {
		t.Fatalf("DecodeAll() of gomidi output error = %v", err)
	}

	back, err := FromSMF(s)
	if err != nil {
		t.Fatalf("FromSMF() error = %v", err)
	}
	h, ok := (smf.File{Chunks: back}).Header()
	if !ok || h.Division != smf.TicksPerQuarterNote(96) || h.TrackCount != 2 {
		t.Errorf("FromSMF() header = %+v", h)
	}

	want := (smf.File{Chunks: chunks}).Tracks()
	for name, got := range map[string][]smf.TrackChunk{
		"written": (smf.File{Chunks: decoded}).Tracks(),
		"direct":  (smf.File{Chunks: back}).Tracks(),
	} {
		if len(got) != len(want) {
			t.Fatalf("%s: %d tracks, want %d", name, len(got), len(want))
		}
		for i := range want {
			g, w := channelEvents(got[i]), channelEvents(want[i])
			if len(g) != len(w) {
				t.Errorf("%s track %d: %d channel events, want %d", name, i, len(g), len(w))
				continue
			}
			for j := range w {
				if g[j] != w[j] {
					t.Errorf("%s track %d event %d = %+v, want %+v", name, i, j, g[j], w[j])
				}
			}
		}
	}
}

func TestToSMFRequiresHeader(t *testing.T) {
	if _, err := ToSMF(testChunks(t)[1:]); err == nil {
		t.Error("ToSMF() without a header succeeded")
	}
	if _, err := FromSMF(nil); err == nil {
		t.Error("FromSMF(nil) succeeded")
	}
}

func TestVerify(t *testing.T) {
	report, err := New(Options{}).Verify(testMIDI(t))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !report.OK || report.GomidiTracks != 2 {
		t.Errorf("Verify() = %+v, want agreement on 2 tracks", report)
	}
	if report.Tracks[1].Ours != 5 {
		t.Errorf("Verify() track 1 = %+v, want 5 channel events", report.Tracks[1])
	}
}
