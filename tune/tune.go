// Package tune maps detected frequencies to musical pitch targets. It
// converts between frequency and MIDI note numbers, searches octave
// recurrences of a reference pitch class, and derives the shift ratio
// that moves a recording onto the nearest recurrence.
package tune

import (
	"fmt"
	"math"
)

// MinPlayableNote and MaxPlayableNote bound the MIDI range the target
// search treats as musically usable.
const (
	MinPlayableNote = 12
	MaxPlayableNote = 108
)

const (
	referenceA4Hz = 440.0
	midiA4        = 69
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// MidiNote returns the MIDI note number closest to freqHz, or -1 for
// non-positive input. A4 = 440 Hz = note 69.
func MidiNote(freqHz float64) int {
	if freqHz <= 0 {
		return -1
	}

	return int(12*math.Log2(freqHz/referenceA4Hz) + midiA4 + 0.5)
}

// NoteFrequency returns the equal-temperament frequency of a MIDI note.
func NoteFrequency(midiNote int) float64 {
	return referenceA4Hz * math.Exp2(float64(midiNote-midiA4)/12)
}

// NoteName returns the pitch-class name with octave, such as "A4" or
// "C#3". Notes outside [0, 127] return the empty string.
func NoteName(midiNote int) string {
	if midiNote < 0 || midiNote > 127 {
		return ""
	}

	return fmt.Sprintf("%s%d", noteNames[midiNote%12], midiNote/12-1)
}

// TargetFrequency finds the octave recurrence of the reference's pitch
// class nearest the recorded frequency. A sharp recording (recorded
// above reference) pulls down to the first recurrence strictly below
// it; otherwise it pulls up to the first recurrence strictly above.
// Returns 0 when either input is non-positive or no playable
// recurrence qualifies.
func TargetFrequency(recordedHz, referenceHz float64) float64 {
	if recordedHz <= 0 || referenceHz <= 0 {
		return 0
	}

	class := MidiNote(referenceHz) % 12

	if recordedHz > referenceHz {
		for octave := 8; octave >= 1; octave-- {
			midi := class + 12*octave
			if midi < MinPlayableNote || midi > MaxPlayableNote {
				continue
			}

			if freq := NoteFrequency(midi); freq < recordedHz {
				return freq
			}
		}

		return 0
	}

	for octave := 1; octave <= 8; octave++ {
		midi := class + 12*octave
		if midi < MinPlayableNote || midi > MaxPlayableNote {
			continue
		}

		if freq := NoteFrequency(midi); freq > recordedHz {
			return freq
		}
	}

	return 0
}

// ShiftRatio returns target/recorded for the TargetFrequency of the
// pair. Degenerate inputs yield an explicit 1.0 (no change): either
// frequency non-positive or outside the playable note range, or no
// target recurrence found.
func ShiftRatio(recordedHz, referenceHz float64) float64 {
	if recordedHz <= 0 || referenceHz <= 0 {
		return 1
	}

	if !playable(MidiNote(recordedHz)) || !playable(MidiNote(referenceHz)) {
		return 1
	}

	target := TargetFrequency(recordedHz, referenceHz)
	if target <= 0 {
		return 1
	}

	return target / recordedHz
}

// SemitonesToRatio converts a signed semitone offset to a frequency
// ratio, 2^(s/12).
func SemitonesToRatio(semitones float64) float64 {
	return math.Exp2(semitones / 12)
}

// RatioToSemitones is the inverse of SemitonesToRatio. Ratio must be
// positive.
func RatioToSemitones(ratio float64) float64 {
	return 12 * math.Log2(ratio)
}

func playable(midiNote int) bool {
	return midiNote >= MinPlayableNote && midiNote <= MaxPlayableNote
}
