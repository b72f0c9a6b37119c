package shift_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-tuner/shift"
)

// ExampleNew demonstrates octave-up shifting through the engine
// factory.
func ExampleNew() {
	engine, err := shift.ParseEngine("vocoder")
	if err != nil {
		panic(err)
	}

	proc, err := shift.New(engine, 48000)
	if err != nil {
		panic(err)
	}

	// One octave up.
	if err := proc.SetPitchSemitones(12); err != nil {
		panic(err)
	}

	in := make([]float64, 8192)
	for i := range in {
		in[i] = 0.25 * math.Sin(2*math.Pi*220*float64(i)/48000)
	}

	out := proc.Process(in)

	fmt.Println("engine:", engine)
	fmt.Printf("ratio: %.1f\n", proc.PitchRatio())
	fmt.Println("samples:", len(out))
	// Output:
	// engine: vocoder
	// ratio: 2.0
	// samples: 8192
}

func ExampleParseEngine() {
	engine, _ := shift.ParseEngine("psola")
	fmt.Println(engine)
	// Output:
	// psola
}
