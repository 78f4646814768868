package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/james-see/smfcodec/pkg/converter"
	"github.com/james-see/smfcodec/pkg/smf"
)

func writeTestMIDI(t *testing.T) string {
	t.Helper()
	chunks := []smf.ParsedChunk{
		smf.HeaderChunk{Format: smf.SingleTrack, TrackCount: 1, Division: smf.TicksPerQuarterNote(96)},
		smf.TrackChunk{Events: []smf.TrackEvent{
			{Message: smf.TextMeta(smf.MetaTrackName, "bass")},
			{Message: smf.NoteOnMsg(2, 36, 110)},
			{Delta: 48, Message: smf.NoteOffMsg(2, 36, 0)},
			{Message: smf.EndOfTrackMeta()},
		}},
	}
	path := filepath.Join(t.TempDir(), "bass.mid")
	if err := smf.WriteFile(path, chunks, smf.EncodeOptions{}); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMenuNavigation(t *testing.T) {
	var m tea.Model = New(converter.Options{})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := m.(Model).menuIndex; got != 0 {
		t.Errorf("menuIndex after up at top = %d, want 0", got)
	}
	for i := 0; i < len(menuItems)+2; i++ {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	if got := m.(Model).menuIndex; got != len(menuItems)-1 {
		t.Errorf("menuIndex after scrolling = %d, want %d", got, len(menuItems)-1)
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter on Exit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("enter on Exit did not quit")
	}
	if m.(Model).state != StateMenu {
		t.Errorf("state after Exit = %v, want StateMenu", m.(Model).state)
	}
}

func TestEnterOpensFilePicker(t *testing.T) {
	var m tea.Model = New(converter.Options{})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	model := m.(Model)
	if model.state != StateFilePicker {
		t.Fatalf("state = %v, want StateFilePicker", model.state)
	}
	if model.item.ToFormat != converter.FormatJSON {
		t.Errorf("selected item = %+v, want MIDI → JSON", model.item)
	}
	if !strings.Contains(model.View(), "PICK A MIDI FILE") {
		t.Error("file picker view does not name the input format")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(Model).state != StateMenu {
		t.Error("esc did not return to the menu")
	}
}

func TestPerformConvert(t *testing.T) {
	path := writeTestMIDI(t)
	m := New(converter.Options{})
	m.item = menuItems[1]
	m.selectedFile = path

	msg := m.performAction()().(actionDoneMsg)
	if msg.err != nil {
		t.Fatalf("performAction() error = %v", msg.err)
	}
	if want := strings.TrimSuffix(path, ".mid") + ".json"; msg.outputFile != want {
		t.Errorf("outputFile = %q, want %q", msg.outputFile, want)
	}
	if _, err := os.Stat(msg.outputFile); err != nil {
		t.Errorf("output not written: %v", err)
	}

	next, _ := m.Update(msg)
	if view := next.(Model).View(); !strings.Contains(view, "WRITTEN") {
		t.Errorf("result view = %q", view)
	}
}

func TestPerformInspect(t *testing.T) {
	m := New(converter.Options{})
	m.item = menuItems[0]
	m.selectedFile = writeTestMIDI(t)

	msg := m.performAction()().(actionDoneMsg)
	if msg.err != nil {
		t.Fatalf("performAction() error = %v", msg.err)
	}
	if msg.outputFile != "" || !strings.Contains(msg.report, "bass") || !strings.Contains(msg.report, "single-track") {
		t.Errorf("inspect report = %q", msg.report)
	}
}

func TestPerformActionError(t *testing.T) {
	m := New(converter.Options{})
	m.item = menuItems[0]
	m.selectedFile = filepath.Join(t.TempDir(), "missing.mid")

	msg := m.performAction()().(actionDoneMsg)
	if msg.err == nil {
		t.Fatal("performAction() on a missing file succeeded")
	}
	next, _ := m.Update(msg)
	if view := next.(Model).View(); !strings.Contains(view, "FAILED") {
		t.Errorf("error view = %q", view)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		item MenuItem
		want string
	}{
		{menuItems[1], "song.json"},
		{menuItems[2], "song.mid"},
		{menuItems[3], "song.syx"},
		{menuItems[5], "song.normalized.mid"},
	}
	for _, tt := range tests {
		if got := outputPath("song.in", tt.item); got != tt.want {
			t.Errorf("outputPath(%s) = %q, want %q", tt.item.Title, got, tt.want)
		}
	}
}
