package questionbank_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
	"github.com/fairyhunter13/ai-interview-evaluator/internal/questionbank"
)

func TestNew_EmbeddedDefaults(t *testing.T) {
	t.Parallel()
	bank, err := questionbank.New("")
	require.NoError(t, err)
	assert.Greater(t, bank.Size(), 10)
}

func TestNew_CustomFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "bank.yaml")
	data := `questions:
  - id: x1
    category: Technical
    prompt: "Explain DNS."
    tags: [dns]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))
	bank, err := questionbank.New(path)
	require.NoError(t, err)
	assert.Equal(t, 1, bank.Size())
}

func TestNew_MissingFileFails(t *testing.T) {
	t.Parallel()
	_, err := questionbank.New("/nonexistent/bank.yaml")
	require.Error(t, err)
}

func TestSample_CategoryMatchedFirst(t *testing.T) {
	t.Parallel()
	bank, err := questionbank.New("")
	require.NoError(t, err)

	got, err := bank.Sample(context.Background(), []string{domain.CategoryCoding}, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for _, q := range got {
		assert.Equal(t, domain.CategoryCoding, q.Category)
	}
}

func TestSample_BroadensWhenCategoryShort(t *testing.T) {
	t.Parallel()
	bank, err := questionbank.New("")
	require.NoError(t, err)

	// More questions than any single category holds: the sample is topped
	// up from the rest of the bank.
	got, err := bank.Sample(context.Background(), []string{domain.CategoryHR}, 10)
	require.NoError(t, err)
	assert.Len(t, got, 10)
}

func TestSample_CountCappedByBankSize(t *testing.T) {
	t.Parallel()
	bank, err := questionbank.New("")
	require.NoError(t, err)
	got, err := bank.Sample(context.Background(), nil, 1000)
	require.NoError(t, err)
	assert.Len(t, got, bank.Size())
}

func TestSample_InvalidCount(t *testing.T) {
	t.Parallel()
	bank, err := questionbank.New("")
	require.NoError(t, err)
	_, err = bank.Sample(context.Background(), nil, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
