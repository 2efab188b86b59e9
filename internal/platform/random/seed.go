// Pacote random fornece a fonte pseudoaleatória semeável usada nos sorteios.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// NewSeed gera uma semente a partir de crypto/rand para execuções de produção.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("random: ler semente: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// New cria um PRNG determinístico: a mesma semente reproduz a mesma sequência.
func New(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// SeedSource decide a semente de cada rodada.
type SeedSource func() (int64, error)

// Fixed devolve sempre a mesma semente; usado em testes e replays de auditoria.
func Fixed(seed int64) SeedSource {
	return func() (int64, error) { return seed, nil }
}

// Crypto é a fonte padrão de produção.
func Crypto() SeedSource {
	return NewSeed
}
