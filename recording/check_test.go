package recording

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/ephys/errs"
)

func TestCheckSegment(t *testing.T) {
	require.NoError(t, CheckSegment(0, 2))
	require.NoError(t, CheckSegment(1, 2))
	require.ErrorIs(t, CheckSegment(2, 2), errs.ErrIndexOutOfRange)
	require.ErrorIs(t, CheckSegment(-1, 2), errs.ErrIndexOutOfRange)
}

func TestCheckRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		channels   []int
		what       string
	}{
		{"full", 0, 30, nil, ""},
		{"empty range", 10, 10, nil, ""},
		{"subset", 5, 7, []int{2, 0}, ""},
		{"negative start", -1, 10, nil, "start sample"},
		{"start past end", 31, 31, nil, "start sample"},
		{"end before start", 10, 5, nil, "end sample"},
		{"end past segment", 0, 31, nil, "end sample"},
		{"channel out of range", 0, 1, []int{3}, "channel"},
		{"negative channel", 0, 1, []int{-1}, "channel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRange(30, 3, tt.start, tt.end, tt.channels)
			if tt.what == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, errs.ErrIndexOutOfRange)

			var ie *errs.IndexError
			require.True(t, errors.As(err, &ie))
			require.Equal(t, tt.what, ie.What)
		})
	}
}

func TestIsAllChannels(t *testing.T) {
	require.True(t, IsAllChannels(nil, 3))
	require.True(t, IsAllChannels([]int{0, 1, 2}, 3))
	require.False(t, IsAllChannels([]int{0, 2, 1}, 3))
	require.False(t, IsAllChannels([]int{0, 1}, 3))
	require.Equal(t, []int{0, 1, 2}, AllChannels(3))
}
