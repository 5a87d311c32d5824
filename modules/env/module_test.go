package env

import (
	"context"
	"testing"

	"github.com/specialistvlad/pagegridgo/internal/datastore"
	"github.com/specialistvlad/pagegridgo/internal/trigger"
	"github.com/specialistvlad/pagegridgo/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv(t *testing.T) {
	t.Setenv("PGG_TEST_HOST", "localhost")
	t.Setenv("PGG_TEST_PORT", "8080")
	t.Setenv("OTHER_TEST_VAR", "x")

	testCases := []struct {
		name    string
		content value.Value
		want    map[string]string
		absent  []string
	}{
		{
			name:    "prefix string",
			content: value.String("PGG_TEST_"),
			want:    map[string]string{"PGG_TEST_HOST": "localhost", "PGG_TEST_PORT": "8080"},
			absent:  []string{"OTHER_TEST_VAR"},
		},
		{
			name:    "list of names",
			content: value.MustFromGo([]any{"PGG_TEST_PORT", "PGG_TEST_MISSING"}),
			want:    map[string]string{"PGG_TEST_PORT": "8080"},
			absent:  []string{"PGG_TEST_HOST", "PGG_TEST_MISSING"},
		},
		{
			name:    "object with names",
			content: value.MustFromGo(map[string]any{"names": []any{"OTHER_TEST_VAR"}}),
			want:    map[string]string{"OTHER_TEST_VAR": "x"},
			absent:  []string{"PGG_TEST_HOST"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values := datastore.NewValues()
			out, err := LoadEnv(context.Background(), tc.content, &trigger.Context{Values: values})
			require.NoError(t, err)

			for k, want := range tc.want {
				assert.Equal(t, want, out.GetString(k))
				got, ok := values.Get(k)
				require.True(t, ok, "value store is missing %s", k)
				assert.Equal(t, want, got.Text())
			}
			for _, k := range tc.absent {
				_, ok := out.Get(k)
				assert.False(t, ok, "%s should not be loaded", k)
			}
		})
	}
}

func TestLoadEnv_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadEnv(context.Background(), value.String("X"), &trigger.Context{})
	require.EqualError(t, err, "no context value store")

	_, err = LoadEnv(context.Background(), value.Number(1), &trigger.Context{Values: datastore.NewValues()})
	require.ErrorContains(t, err, "got number")
}
