package tune

import (
	"math"
	"testing"
)

func TestMidiNote(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		want int
	}{
		{"a4", 440, 69},
		{"a sharp 4", 466.16, 70},
		{"c4", 261.63, 60},
		{"a0", 27.5, 21},
		{"c8", 4186.01, 108},
		{"sharp a4 still a4", 450, 69},
		{"zero", 0, -1},
		{"negative", -100, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MidiNote(tt.freq); got != tt.want {
				t.Fatalf("MidiNote(%v): got=%d want=%d", tt.freq, got, tt.want)
			}
		})
	}
}

func TestNoteFrequency(t *testing.T) {
	tests := []struct {
		name string
		midi int
		want float64
	}{
		{"a4", 69, 440},
		{"a5", 81, 880},
		{"a3", 57, 220},
		{"a2", 45, 110},
		{"c4", 60, 261.6255653005986},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NoteFrequency(tt.midi)
			if math.Abs(got-tt.want)/tt.want > 1e-9 {
				t.Fatalf("NoteFrequency(%d): got=%v want=%v", tt.midi, got, tt.want)
			}
		})
	}
}

func TestNoteName(t *testing.T) {
	tests := []struct {
		midi int
		want string
	}{
		{69, "A4"},
		{60, "C4"},
		{70, "A#4"},
		{21, "A0"},
		{108, "C8"},
		{0, "C-1"},
		{127, "G9"},
		{-1, ""},
		{128, ""},
	}

	for _, tt := range tests {
		if got := NoteName(tt.midi); got != tt.want {
			t.Fatalf("NoteName(%d): got=%q want=%q", tt.midi, got, tt.want)
		}
	}
}

func TestTargetFrequency(t *testing.T) {
	tests := []struct {
		name     string
		recorded float64
		ref      float64
		want     float64
	}{
		{"sharp pulls down", 466, 440, 440},
		{"flat pulls up", 430, 440, 440},
		{"equal goes octave up", 440, 440, 880},
		{"well above picks lower recurrence", 900, 440, 880},
		{"exact recurrence pulls down an octave", 880, 440, 440},
		{"zero recorded", 0, 440, 0},
		{"zero reference", 440, 0, 0},
		{"below lowest recurrence", 20, 15.5, 0},
		{"above highest recurrence", 3000, 4186, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TargetFrequency(tt.recorded, tt.ref)
			if tt.want == 0 {
				if got != 0 {
					t.Fatalf("TargetFrequency(%v, %v): got=%v want=0", tt.recorded, tt.ref, got)
				}
				return
			}
			if math.Abs(got-tt.want)/tt.want > 1e-9 {
				t.Fatalf("TargetFrequency(%v, %v): got=%v want=%v", tt.recorded, tt.ref, got, tt.want)
			}
		})
	}
}

func TestShiftRatio(t *testing.T) {
	tests := []struct {
		name     string
		recorded float64
		ref      float64
		want     float64
	}{
		{"sharp pulls down", 466, 440, 440.0 / 466},
		{"flat pulls up", 430, 440, 440.0 / 430},
		{"equal doubles", 440, 440, 2},
		{"zero recorded", 0, 440, 1},
		{"negative reference", 440, -2, 1},
		{"recorded below playable range", 1, 440, 1},
		{"recorded above playable range", 5000, 440, 1},
		{"no recurrence in range", 3000, 4186, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShiftRatio(tt.recorded, tt.ref)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("ShiftRatio(%v, %v): got=%v want=%v", tt.recorded, tt.ref, got, tt.want)
			}
		})
	}
}

func TestSemitoneRatioConversion(t *testing.T) {
	tests := []struct {
		semitones float64
		want      float64
	}{
		{12, 2},
		{-12, 0.5},
		{0, 1},
		{7, 1.4983070768766815},
	}

	for _, tt := range tests {
		got := SemitonesToRatio(tt.semitones)
		if math.Abs(got-tt.want) > 1e-12 {
			t.Fatalf("SemitonesToRatio(%v): got=%v want=%v", tt.semitones, got, tt.want)
		}

		back := RatioToSemitones(got)
		if math.Abs(back-tt.semitones) > 1e-12 {
			t.Fatalf("RatioToSemitones(%v): got=%v want=%v", got, back, tt.semitones)
		}
	}
}
