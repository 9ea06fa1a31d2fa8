// Package certtesting produces deterministic BLS keys and signed
// certificates for tests and demos. None of it is suitable for production
// key material.
package certtesting

import (
	"crypto/sha256"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/sage-x-project/sage-http-certification/pkg/bls"
	"github.com/sage-x-project/sage-http-certification/pkg/certificate"
)

// KeyPair is a BLS12-381 key pair derived from a seed string.
type KeyPair struct {
	secret big.Int
	public bls12381.G2Affine
}

// NewKeyPair derives a key pair from seed. The same seed always gives the
// same key.
func NewKeyPair(seed string) *KeyPair {
	digest := sha256.Sum256([]byte(seed))

	k := &KeyPair{}
	k.secret.SetBytes(digest[:])
	k.secret.Mod(&k.secret, fr.Modulus())
	if k.secret.Sign() == 0 {
		k.secret.SetInt64(1)
	}

	_, _, _, g2 := bls12381.Generators()
	k.public.ScalarMultiplication(&g2, &k.secret)
	return k
}

// Sign returns a compressed G1 signature of msg.
func (k *KeyPair) Sign(msg []byte) []byte {
	h, err := bls.HashToG1(msg, bls.DST)
	if err != nil {
		panic(err)
	}
	var sig bls12381.G1Affine
	sig.ScalarMultiplication(&h, &k.secret)
	b := sig.Bytes()
	return b[:]
}

// PublicKey returns the compressed 96-byte public key.
func (k *KeyPair) PublicKey() []byte {
	b := k.public.Bytes()
	return b[:]
}

// DERPublicKey returns the DER encoded public key.
func (k *KeyPair) DERPublicKey() []byte {
	return certificate.EncodeDERPublicKey(k.PublicKey())
}
