package bitmap

const (
	// minSize is the smallest capacity a Bitmap can have, in bits.
	// Requested sizes below it are clamped up.
	minSize = 64

	wordShift = 6  // 2**6 = 64 bits per word
	wordMask  = 63 // bit offset within a word

	allOnes = ^uint64(0)
)

// Bitmap is a fixed-capacity set of bits packed into 64-bit words.
// The capacity is rounded up to a power of two (at least 64) at
// construction and never changes afterwards.
//
// Bitmap performs no internal locking. Callers sharing one instance
// across goroutines must serialize access themselves.
type Bitmap struct {
	words   []uint64
	bitSize int // rounded capacity in bits, a power of two >= minSize

	// startBit is where FindFreeSlot begins scanning. Bits below it
	// are never returned as free slots but stay addressable through
	// Set, Unset and IsSet.
	startBit int
}

// New creates a Bitmap with at least size bits, all unset.
// The capacity is rounded up to the next power of two, with a floor
// of 64 bits, so size 0 is valid and yields a 64-bit map.
func New(size int) *Bitmap {
	if size < 0 {
		panic("bitmap: size must be non-negative")
	}
	if size < minSize {
		size = minSize
	}
	rounded := roundUpPowerOfTwo(size)

	return &Bitmap{
		words:   make([]uint64, rounded>>wordShift),
		bitSize: rounded,
	}
}

// NewWithReserved creates a Bitmap like New, but excludes the first
// reserved bits from FindFreeSlot. The reserved bits remain settable,
// clearable and testable. reserved is checked against the requested
// size before rounding; a reservation covering the whole request is a
// programmer error.
func NewWithReserved(size, reserved int) *Bitmap {
	if reserved < 0 || reserved >= size {
		panic("bitmap: reserved space must be less than size")
	}

	b := New(size)
	b.startBit = reserved
	return b
}

// Set sets the bit at the given index to 1.
func (b *Bitmap) Set(bit int) {
	b.validateIndex(bit)
	b.words[bit>>wordShift] |= 1 << uint(bit&wordMask)
}

// Unset clears the bit at the given index to 0.
func (b *Bitmap) Unset(bit int) {
	b.validateIndex(bit)
	b.words[bit>>wordShift] &^= 1 << uint(bit&wordMask)
}

// IsSet reports whether the bit at the given index is 1.
func (b *Bitmap) IsSet(bit int) bool {
	b.validateIndex(bit)
	return b.words[bit>>wordShift]>>uint(bit&wordMask)&1 == 1
}

// FindFreeSlot returns the smallest unset bit index at or above the
// reserved prefix, and false when every eligible bit is set.
//
// It does not claim the slot. A caller that races other goroutines
// must hold its own lock across FindFreeSlot and the Set that claims
// the result, or the same slot can be handed out twice.
func (b *Bitmap) FindFreeSlot() (int, bool) {
	first := b.startBit >> wordShift
	for w := first; w < len(b.words); w++ {
		if b.words[w] == allOnes {
			continue
		}
		off := 0
		if w == first {
			off = b.startBit & wordMask
		}
		for ; off <= wordMask; off++ {
			if b.words[w]>>uint(off)&1 == 0 {
				return w<<wordShift | off, true
			}
		}
	}
	return 0, false
}

// BitSize returns the capacity of the bitmap in bits.
func (b *Bitmap) BitSize() int {
	return b.bitSize
}

// Size returns the number of 64-bit words backing the bitmap.
func (b *Bitmap) Size() int {
	return len(b.words)
}

// validateIndex checks that bit addresses the rounded capacity.
func (b *Bitmap) validateIndex(bit int) {
	if bit < 0 || bit >= b.bitSize {
		panic("bitmap: index out of range")
	}
}

// roundUpPowerOfTwo returns the next power of two >= x.
// Powers of two are returned unchanged.
func roundUpPowerOfTwo(x int) int {
	x--
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	return x + 1
}
