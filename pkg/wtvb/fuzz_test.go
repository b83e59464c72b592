// SPDX-License-Identifier: Apache-2.0

package wtvb

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS, default 500
func getFuzzRounds() int {
	if env := os.Getenv("FUZZ_ROUNDS"); env != "" {
		if rounds, err := strconv.Atoi(env); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 500
}

// newFuzzRng creates a seeded rng and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := time.Now().UnixNano()
	if env := os.Getenv("FUZZ_SEED"); env != "" {
		if s, err := strconv.ParseInt(env, 10, 64); err == nil {
			seed = s
		}
	}
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// Pure noise must never emit a frame or panic, whatever the chunking.
func TestAssembler_FuzzNoise(t *testing.T) {
	rng := newFuzzRng(t)

	for round := 0; round < getFuzzRounds(); round++ {
		a := NewAssembler([]byte{0x50})
		noise := make([]byte, rng.Intn(200))
		for i := range noise {
			// Exclude the configured address so no candidate frame can
			// ever start, then nothing may be emitted.
			b := byte(rng.Intn(256))
			if b == 0x50 {
				b = 0x51
			}
			noise[i] = b
		}
		if frames := a.FeedBytes(noise); len(frames) != 0 {
			t.Fatalf("round %d: %d frames emitted from pure noise", round, len(frames))
		}
	}
}

// Valid frames embedded in random garbage must all be recovered, and the
// result must not depend on how the stream is chunked.
func TestAssembler_FuzzEmbeddedFrames(t *testing.T) {
	rng := newFuzzRng(t)

	for round := 0; round < getFuzzRounds(); round++ {
		numFrames := 1 + rng.Intn(4)
		var stream []byte
		var want [][]byte

		for i := 0; i < numFrames; i++ {
			garbage := make([]byte, rng.Intn(8))
			for j := range garbage {
				b := byte(rng.Intn(256))
				if b == 0x50 {
					b = 0x51
				}
				garbage[j] = b
			}
			stream = append(stream, garbage...)

			payload := make([]byte, 2*(1+rng.Intn(12)))
			rng.Read(payload)
			want = append(want, payload)
			stream = append(stream, makeResponse(0x50, payload)...)
		}

		// Random chunking.
		a := NewAssembler([]byte{0x50})
		var got []*Frame
		for off := 0; off < len(stream); {
			n := 1 + rng.Intn(7)
			if off+n > len(stream) {
				n = len(stream) - off
			}
			got = append(got, a.FeedBytes(stream[off:off+n])...)
			off += n
		}

		if len(got) != len(want) {
			t.Fatalf("round %d: recovered %d frames, want %d", round, len(got), len(want))
		}
		for i := range want {
			if !bytes.Equal(got[i].Payload(), want[i]) {
				t.Fatalf("round %d: frame %d payload = % X, want % X", round, i, got[i].Payload(), want[i])
			}
		}
	}
}
