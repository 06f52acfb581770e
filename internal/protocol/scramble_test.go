package protocol

import (
	"bytes"
	"testing"
)

func TestScrambleInvolutive(t *testing.T) {
	cases := [][]byte{
		nil,
		[]byte{},
		[]byte("guest"),
		[]byte("hunter2"),
		{0x00, 0xFF, 0x7F, 0x80},
	}
	for _, c := range cases {
		got := Scramble(Scramble(c))
		if !bytes.Equal(got, c) && !(len(got) == 0 && len(c) == 0) {
			t.Errorf("Scramble(Scramble(%v)) = %v, want %v", c, got, c)
		}
	}
}

func TestScrambleFixedVector(t *testing.T) {
	in := []byte("hi")
	want := []byte{'h' ^ 0xFF, 'i' ^ 0xFF}
	got := Scramble(in)
	if !bytes.Equal(got, want) {
		t.Errorf("Scramble(%q) = %x, want %x", in, got, want)
	}
}
