package wav_test

import (
	"bytes"
	"fmt"
	"log"

	"github.com/cwbudde/algo-tuner/audio"
	"github.com/cwbudde/algo-tuner/formats/wav"
)

func Example() {
	clip := &audio.Clip{
		Samples:    []float64{0, 0.5, -0.5, 0.25},
		SampleRate: 48000,
	}

	var buf bytes.Buffer
	if err := wav.Encode(&buf, clip, wav.EncodingPCM16); err != nil {
		log.Fatal(err)
	}

	hdr, err := wav.ReadHeader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("bytes:", buf.Len())
	fmt.Println("format:", hdr.Format)
	fmt.Println("rate:", hdr.SampleRate)
	fmt.Println("frames:", hdr.Frames())
	// Output:
	// bytes: 52
	// format: 1
	// rate: 48000
	// frames: 4
}

func ExampleParseEncoding() {
	enc, err := wav.ParseEncoding("float32")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(enc)
	// Output:
	// float32
}
