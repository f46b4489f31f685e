package bpe

// BytePermutation maps each raw byte to the id a vocabulary assigned it.
// Some pretrained vocabularies do not give byte b the id b, so bytes are
// permuted before encoding and restored after decoding.
type BytePermutation [NumBytes]byte

// IdentityPermutation returns the permutation that leaves every byte as is.
func IdentityPermutation() BytePermutation {
	var p BytePermutation
	for i := range p {
		p[i] = byte(i)
	}

	return p
}

// IsIdentity reports whether the permutation changes nothing.
func (p BytePermutation) IsIdentity() bool {
	for i, b := range p {
		if int(b) != i {
			return false
		}
	}

	return true
}

// Inverse returns the permutation that undoes p.
func (p BytePermutation) Inverse() BytePermutation {
	var inv BytePermutation
	for i, b := range p {
		inv[b] = byte(i)
	}

	return inv
}

// Apply returns a new slice with every byte mapped through the permutation.
func (p BytePermutation) Apply(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[i] = p[v]
	}

	return out
}
