package kcap

// Generator constants. They are kept as signed 32-bit values because the
// engine computes the whole stream in int32 arithmetic.
const (
	stateLength = 624
	stateM      = 397

	matrixA        int32 = -1727483681 // 0x9908B0DF
	temperingMaskB int32 = -1658038656 // 0x9D2C5680
	temperingMaskC int32 = -272236544  // 0xEFC60000

	lowerMask int32 = 0x7FFFFFFF
)

var mag01 = [2]int32{0, matrixA}

// KeyStream is the Mersenne Twister variant used by the engine to derive key
// tables. It differs from MT19937 in that every shift right is arithmetic, so
// its output diverges from the reference generator as soon as a word has the
// sign bit set.
type KeyStream struct {
	state [stateLength]int32
	pos   int
}

// NewKeyStream returns a generator seeded with seed.
func NewKeyStream(seed int32) *KeyStream {
	ks := &KeyStream{}
	ks.Seed(seed)
	return ks
}

// Seed resets the whole state from seed. The next call to Next regenerates
// the state before drawing.
func (ks *KeyStream) Seed(seed int32) {
	ks.state[0] = seed
	for i := 1; i < stateLength; i++ {
		prev := ks.state[i-1]
		ks.state[i] = int32(i) + 0x6C078965*(prev^(prev>>30))
	}
	ks.pos = stateLength
}

func (ks *KeyStream) twist() {
	mt := &ks.state
	i := 0
	for ; i < stateLength-stateM; i++ {
		y := mt[i] ^ ((mt[i] ^ mt[i+1]) & lowerMask)
		mt[i] = mt[i+stateM] ^ mag01[mt[i+1]&1] ^ (y >> 1)
	}
	for ; i < stateLength-1; i++ {
		y := mt[i] ^ ((mt[i] ^ mt[i+1]) & lowerMask)
		mt[i] = mt[i+stateM-stateLength] ^ mag01[mt[i+1]&1] ^ (y >> 1)
	}
	y := mt[stateLength-1] ^ ((mt[0] ^ mt[stateLength-1]) & lowerMask)
	mt[stateLength-1] = mt[stateM-1] ^ (y >> 1) ^ mag01[y&1]
	ks.pos = 0
}

// Next returns the next tempered word of the stream.
func (ks *KeyStream) Next() int32 {
	if ks.pos >= stateLength {
		ks.twist()
	}
	y := ks.state[ks.pos]
	ks.pos++

	y ^= y >> 11
	y ^= (y << 7) & temperingMaskB
	y ^= (y << 15) & temperingMaskC
	y ^= y >> 18
	return y
}
