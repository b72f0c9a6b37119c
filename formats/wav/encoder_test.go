package wav

import (
	"bytes"
	"math"
	"testing"

	"github.com/cwbudde/algo-tuner/audio"
	"github.com/cwbudde/algo-tuner/internal/testutil"
)

func TestEncodePCM16HeaderBytes(t *testing.T) {
	clip := &audio.Clip{
		Samples:    []float64{0.5, -0.5, 1, -1},
		SampleRate: 22050,
	}

	var buf bytes.Buffer
	if err := Encode(&buf, clip, EncodingPCM16); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	// Every byte of the canonical header is load-bearing.
	wantHeader := []byte{
		'R', 'I', 'F', 'F',
		0x2C, 0x00, 0x00, 0x00, // riff size = 36 + 8
		'W', 'A', 'V', 'E',
		'f', 'm', 't', ' ',
		0x10, 0x00, 0x00, 0x00, // fmt size 16
		0x01, 0x00, // PCM
		0x01, 0x00, // mono
		0x22, 0x56, 0x00, 0x00, // 22050 Hz
		0x44, 0xAC, 0x00, 0x00, // byte rate 44100
		0x02, 0x00, // block align
		0x10, 0x00, // 16 bits
		'd', 'a', 't', 'a',
		0x08, 0x00, 0x00, 0x00, // data size
	}

	got := buf.Bytes()
	if len(got) != 44+8 {
		t.Fatalf("total size = %d, want 52", len(got))
	}

	if !bytes.Equal(got[:44], wantHeader) {
		t.Fatalf("header mismatch:\ngot  % X\nwant % X", got[:44], wantHeader)
	}

	wantPayload := pcm16Payload(16384, -16384, 32767, -32768)
	if !bytes.Equal(got[44:], wantPayload) {
		t.Fatalf("payload mismatch:\ngot  % X\nwant % X", got[44:], wantPayload)
	}
}

func TestEncodeFloat32HeaderBytes(t *testing.T) {
	clip := &audio.Clip{
		Samples:    []float64{0.25, -1.5},
		SampleRate: 48000,
	}

	var buf bytes.Buffer
	if err := Encode(&buf, clip, EncodingFloat32); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	wantHeader := []byte{
		'R', 'I', 'F', 'F',
		0x2C, 0x00, 0x00, 0x00, // riff size = 36 + 8
		'W', 'A', 'V', 'E',
		'f', 'm', 't', ' ',
		0x10, 0x00, 0x00, 0x00,
		0x03, 0x00, // IEEE float
		0x01, 0x00,
		0x80, 0xBB, 0x00, 0x00, // 48000 Hz
		0x00, 0xEE, 0x02, 0x00, // byte rate 192000
		0x04, 0x00,
		0x20, 0x00, // 32 bits
		'd', 'a', 't', 'a',
		0x08, 0x00, 0x00, 0x00,
	}

	got := buf.Bytes()
	if !bytes.Equal(got[:44], wantHeader) {
		t.Fatalf("header mismatch:\ngot  % X\nwant % X", got[:44], wantHeader)
	}

	// Float payload keeps its bit pattern, including out-of-range values.
	wantPayload := float32Payload(0.25, -1.5)
	if !bytes.Equal(got[44:], wantPayload) {
		t.Fatalf("payload mismatch:\ngot  % X\nwant % X", got[44:], wantPayload)
	}
}

func TestRoundTripFloat32Exact(t *testing.T) {
	in := testutil.DeterministicSine(440, 48000, 0.8, 4800)
	clip := &audio.Clip{Samples: in, SampleRate: 48000}

	var buf bytes.Buffer
	if err := Encode(&buf, clip, EncodingFloat32); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	back, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if back.SampleRate != 48000 || len(back.Samples) != len(in) {
		t.Fatalf("shape mismatch: rate=%d len=%d", back.SampleRate, len(back.Samples))
	}

	for i := range in {
		if back.Samples[i] != float64(float32(in[i])) {
			t.Fatalf("sample[%d] = %v, want %v", i, back.Samples[i], float64(float32(in[i])))
		}
	}
}

func TestRoundTripPCM16WithinOneStep(t *testing.T) {
	in := testutil.DeterministicSine(440, 44100, 0.9, 4410)
	clip := &audio.Clip{Samples: in, SampleRate: 44100}

	var buf bytes.Buffer
	if err := Encode(&buf, clip, EncodingPCM16); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	back, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	// Round-to-nearest encode against the /32768 decode bounds the
	// error to half a quantization step for in-range samples.
	const halfStep = 0.5 / 32768.0
	for i := range in {
		if diff := math.Abs(back.Samples[i] - in[i]); diff > halfStep {
			t.Fatalf("sample[%d] error %v exceeds half a quantization step", i, diff)
		}
	}
}

func TestEncodePCM16ClampsHotSamples(t *testing.T) {
	clip := &audio.Clip{Samples: []float64{2.0, -3.0}, SampleRate: 8000}

	var buf bytes.Buffer
	if err := Encode(&buf, clip, EncodingPCM16); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	want := pcm16Payload(32767, -32768)
	if !bytes.Equal(buf.Bytes()[44:], want) {
		t.Fatalf("payload = % X, want % X", buf.Bytes()[44:], want)
	}
}

func TestEncodeValidation(t *testing.T) {
	var buf bytes.Buffer

	if err := Encode(&buf, nil, EncodingPCM16); err == nil {
		t.Fatal("expected error for nil clip")
	}

	clip := &audio.Clip{Samples: testutil.Ones(4)}
	if err := Encode(&buf, clip, EncodingPCM16); err == nil {
		t.Fatal("expected error for missing sample rate")
	}

	clip.SampleRate = 44100
	if err := Encode(&buf, clip, Encoding(7)); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}

func TestEncodeEmptyClip(t *testing.T) {
	clip := &audio.Clip{Samples: nil, SampleRate: 44100}

	var buf bytes.Buffer
	if err := Encode(&buf, clip, EncodingPCM16); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if buf.Len() != 44 {
		t.Fatalf("size = %d, want header only", buf.Len())
	}

	back, err := Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if len(back.Samples) != 0 {
		t.Fatalf("len = %d, want 0", len(back.Samples))
	}
}

func TestParseEncoding(t *testing.T) {
	enc, err := ParseEncoding("pcm16")
	if err != nil || enc != EncodingPCM16 {
		t.Fatalf("ParseEncoding(pcm16) = %v, %v", enc, err)
	}

	enc, err = ParseEncoding("float32")
	if err != nil || enc != EncodingFloat32 {
		t.Fatalf("ParseEncoding(float32) = %v, %v", enc, err)
	}

	if _, err := ParseEncoding("mp3"); err == nil {
		t.Fatal("expected error for unknown name")
	}

	if EncodingPCM16.String() != "pcm16" || EncodingFloat32.String() != "float32" {
		t.Fatal("String() names must match ParseEncoding")
	}
}
