package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestID(t *testing.T) {
	tests := []struct {
		name string
		data string
		id   uint64
	}{
		{"empty string", "", 0xef46db3751d8e999},
		{"short string", "test", 0x4fdcca5ddb678139},
		{"long string", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
		{"another string", "another test string", 0x212a22f593810bec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.id, ID(tt.data))
			assert.Equal(t, tt.id, Checksum([]byte(tt.data)))
		})
	}
}

func TestDigestMatchesChecksum(t *testing.T) {
	payload := []byte("imec0.ap segment zero payload")

	d := NewDigest()
	_, _ = d.Write(payload[:10])
	_, _ = d.Write(payload[10:])

	assert.Equal(t, Checksum(payload), d.Sum64())
}
