package ids

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_New_QuandoMesmoInstante_DeveSerMonotonico(t *testing.T) {
	fixo := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	gen := NewGeneratorAt(func() time.Time { return fixo })

	anterior := gen.New()
	for i := 0; i < 50; i++ {
		atual := gen.New()
		assert.Greater(t, atual, anterior)
		anterior = atual
	}

	parsed, err := ulid.Parse(anterior)
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(fixo), parsed.Time())
}
