package tune_test

import (
	"fmt"

	"github.com/cwbudde/algo-tuner/tune"
)

func ExampleShiftRatio() {
	// A slightly sharp A4 against a 440 Hz reference pulls down to A4.
	target := tune.TargetFrequency(466, 440)
	ratio := tune.ShiftRatio(466, 440)

	fmt.Printf("target: %.1f Hz (%s)\n", target, tune.NoteName(tune.MidiNote(target)))
	fmt.Printf("ratio: %.3f\n", ratio)
	// Output:
	// target: 440.0 Hz (A4)
	// ratio: 0.944
}

func ExampleNoteName() {
	fmt.Println(tune.NoteName(69))
	fmt.Println(tune.NoteName(61))
	// Output:
	// A4
	// C#4
}
