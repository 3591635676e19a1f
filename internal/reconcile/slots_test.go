package reconcile

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

func (r *recorder) hooks() Hooks[string, string] {
	return Hooks[string, string]{
		Create: func(j int, key string) (string, error) {
			r.calls = append(r.calls, fmt.Sprintf("create %d %s", j, key))
			return "v-" + key, nil
		},
		Update: func(j int, v string, key string) error {
			r.calls = append(r.calls, fmt.Sprintf("update %d %s->%s", j, v, key))
			return nil
		},
		Destroy: func(j int, v string) {
			r.calls = append(r.calls, fmt.Sprintf("destroy %d %s", j, v))
		},
	}
}

func TestSync(t *testing.T) {
	tests := []struct {
		name    string
		initial []string
		keys    []string
		want    Result
		calls   []string
		final   []string
	}{
		{
			name:  "fill from empty",
			keys:  []string{"a", "b"},
			want:  Result{Created: 2},
			calls: []string{"create 0 a", "create 1 b"},
			final: []string{"a", "b"},
		},
		{
			name:    "unchanged is noop",
			initial: []string{"a", "b"},
			keys:    []string{"a", "b"},
			final:   []string{"a", "b"},
		},
		{
			name:    "shrink pops from the end last first",
			initial: []string{"a", "b", "c"},
			keys:    []string{"a"},
			want:    Result{Removed: 2},
			calls:   []string{"destroy 2 v-c", "destroy 1 v-b"},
			final:   []string{"a"},
		},
		{
			name:    "middle removal updates positionally",
			initial: []string{"a", "b", "c"},
			keys:    []string{"a", "c"},
			want:    Result{Removed: 1, Updated: 1},
			calls:   []string{"destroy 2 v-c", "update 1 v-b->c"},
			final:   []string{"a", "c"},
		},
		{
			name:    "grow and update",
			initial: []string{"a"},
			keys:    []string{"x", "b"},
			want:    Result{Created: 1, Updated: 1},
			calls:   []string{"update 0 v-a->x", "create 1 b"},
			final:   []string{"x", "b"},
		},
		{
			name:    "empty clears",
			initial: []string{"a", "b"},
			keys:    nil,
			want:    Result{Removed: 2},
			calls:   []string{"destroy 1 v-b", "destroy 0 v-a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Slots[string, string]
			seed := &recorder{}
			_, err := s.Sync(tt.initial, seed.hooks())
			require.NoError(t, err)

			rec := &recorder{}
			got, err := s.Sync(tt.keys, rec.hooks())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.calls, rec.calls)
			if len(tt.final) == 0 {
				assert.Empty(t, s.Keys())
			} else {
				assert.Equal(t, tt.final, s.Keys())
			}
		})
	}
}

func TestSync_Idempotent(t *testing.T) {
	var s Slots[int, int]
	h := Hooks[int, int]{
		Create: func(j, key int) (int, error) { return key * 10, nil },
		Update: func(j, v, key int) error { return nil },
	}
	_, err := s.Sync([]int{3, 1, 4}, h)
	require.NoError(t, err)

	res, err := s.Sync([]int{3, 1, 4}, h)
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Equal(t, []int{30, 10, 40}, s.Values())
}

func TestSync_CreateErrorStopsPass(t *testing.T) {
	var s Slots[string, int]
	boom := errors.New("boom")
	h := Hooks[string, int]{
		Create: func(j int, key string) (int, error) {
			if key == "bad" {
				return 0, boom
			}
			return j, nil
		},
	}

	res, err := s.Sync([]string{"a", "bad", "c"}, h)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, s.Len())
}

func TestSync_UpdateErrorContinues(t *testing.T) {
	var s Slots[string, int]
	boom := errors.New("boom")
	h := Hooks[string, int]{
		Create: func(j int, key string) (int, error) { return j, nil },
		Update: func(j, v int, key string) error { return boom },
	}
	_, err := s.Sync([]string{"a", "b"}, h)
	require.NoError(t, err)

	res, err := s.Sync([]string{"x", "y"}, h)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, []string{"x", "y"}, s.Keys())
}

func TestClear(t *testing.T) {
	var s Slots[string, string]
	rec := &recorder{}
	_, err := s.Sync([]string{"a", "b"}, rec.hooks())
	require.NoError(t, err)

	rec.calls = nil
	n := s.Clear(rec.hooks().Destroy)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"destroy 1 v-b", "destroy 0 v-a"}, rec.calls)
	assert.Zero(t, s.Len())
}
