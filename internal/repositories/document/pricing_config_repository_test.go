package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sash-studio/api/internal/platform/storage"
)

type fakeObjectReader struct {
	data   []byte
	err    error
	bucket string
	object string
}

func (f *fakeObjectReader) ReadObject(_ context.Context, bucket, object string) ([]byte, error) {
	f.bucket, f.object = bucket, object
	return f.data, f.err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFileSourceLoadsOverrides(t *testing.T) {
	path := writeFile(t, "bar_price: 20\nglass_frosted_price: 92.5\nopening_bottom_price: 35\nglass_triple_price: ~\n")
	repo, err := NewPricingConfigRepository(FileSource{Path: path})
	require.NoError(t, err)

	got, err := repo.LoadOverrides(context.Background())
	require.NoError(t, err)

	require.NotNil(t, got.BarPrice)
	assert.Equal(t, 20.0, *got.BarPrice)
	require.NotNil(t, got.GlassFrostedPrice)
	assert.Equal(t, 92.5, *got.GlassFrostedPrice)
	require.NotNil(t, got.OpeningBottomPrice)
	assert.Equal(t, 35.0, *got.OpeningBottomPrice)
	assert.Nil(t, got.GlassTriplePrice)
	assert.Nil(t, got.OpeningFixedPrice)
}

func TestMissingOrBlankDocumentYieldsEmptyOverrides(t *testing.T) {
	missing, err := NewPricingConfigRepository(FileSource{Path: filepath.Join(t.TempDir(), "absent.yaml")})
	require.NoError(t, err)
	got, err := missing.LoadOverrides(context.Background())
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	blank, err := NewPricingConfigRepository(FileSource{Path: writeFile(t, "\n  \n")})
	require.NoError(t, err)
	got, err = blank.LoadOverrides(context.Background())
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestMalformedDocumentFails(t *testing.T) {
	cases := map[string]string{
		"not yaml":    "bar_price: [1, 2\n",
		"not numeric": "bar_price: cheap\n",
		"a list":      "- 1\n- 2\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			repo, err := NewPricingConfigRepository(FileSource{Path: writeFile(t, content)})
			require.NoError(t, err)
			_, err = repo.LoadOverrides(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestObjectSourceReadsFromBucket(t *testing.T) {
	reader := &fakeObjectReader{data: []byte("opening_fixed_price: 65\n")}
	repo, err := NewPricingConfigRepository(ObjectSource{Reader: reader, Bucket: "rules", Object: "pricing/overrides.yaml"})
	require.NoError(t, err)

	got, err := repo.LoadOverrides(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "rules", reader.bucket)
	assert.Equal(t, "pricing/overrides.yaml", reader.object)
	require.NotNil(t, got.OpeningFixedPrice)
	assert.Equal(t, 65.0, *got.OpeningFixedPrice)
}

func TestObjectSourceMissingObjectYieldsEmptyOverrides(t *testing.T) {
	reader := &fakeObjectReader{err: fmt.Errorf("gs://rules/x: %w", storage.ErrObjectNotFound)}
	repo, err := NewPricingConfigRepository(ObjectSource{Reader: reader, Bucket: "rules", Object: "x"})
	require.NoError(t, err)

	got, err := repo.LoadOverrides(context.Background())
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestObjectSourcePropagatesReadFailure(t *testing.T) {
	boom := errors.New("permission denied")
	repo, err := NewPricingConfigRepository(ObjectSource{Reader: &fakeObjectReader{err: boom}, Bucket: "rules", Object: "x"})
	require.NoError(t, err)

	_, err = repo.LoadOverrides(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "gs://rules/x")
}

func TestNewPricingConfigRepositoryRequiresSource(t *testing.T) {
	_, err := NewPricingConfigRepository(nil)
	assert.Error(t, err)
}
