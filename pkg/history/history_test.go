package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/robowatch/pkg/logformat"
	"github.com/walteh/robowatch/pkg/report"
	"github.com/walteh/robowatch/pkg/robocopy"
)

func openTemp(t *testing.T) (context.Context, *BoltStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	s, err := Open(path)
	require.NoError(t, err, "opening store should succeed")
	t.Cleanup(func() { _ = s.Close() })

	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background()), s, path
}

func sample(source string, code int) *report.CopyReport {
	start := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	return report.Build(report.Params{
		Source:      source,
		Destination: `D:\dst`,
		ScanTotal:   600,
		Summary: logformat.Summary{
			Files:       logformat.Counts{Total: 3, Copied: 3},
			Bytes:       logformat.Counts{Total: 600, Copied: 600},
			Times:       logformat.Times{Total: 2 * time.Second},
			BytesPerSec: 300,
		},
		Result:     robocopy.Classify(code),
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
	})
}

func TestSaveAndGet(t *testing.T) {
	ctx, s, _ := openTemp(t)

	want := sample(`C:\a`, 1)
	id, err := s.Save(ctx, want)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id, "ids start at one")

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, want.Source, got.Report.Source)
	assert.Equal(t, want.Files, got.Report.Files)
	assert.Equal(t, want.Times, got.Report.Times)
	assert.True(t, want.StartedAt.Equal(got.Report.StartedAt))
	assert.Equal(t, want.Message, got.Report.Message)
}

func TestGetMissing(t *testing.T) {
	ctx, s, _ := openTemp(t)

	_, err := s.Get(ctx, 99)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound), "missing id should wrap ErrNotFound")
}

func TestList(t *testing.T) {
	ctx, s, _ := openTemp(t)

	for i, src := range []string{`C:\one`, `C:\two`, `C:\three`} {
		id, err := s.Save(ctx, sample(src, i))
		require.NoError(t, err)
		assert.Equal(t, uint64(i+1), id)
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "all", limit: 0, want: []string{`C:\three`, `C:\two`, `C:\one`}},
		{name: "limited", limit: 2, want: []string{`C:\three`, `C:\two`}},
		{name: "limit_above_count", limit: 10, want: []string{`C:\three`, `C:\two`, `C:\one`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := s.List(ctx, tt.limit)
			require.NoError(t, err)
			var got []string
			for _, e := range entries {
				got = append(got, e.Report.Source)
			}
			assert.Equal(t, tt.want, got, "entries should be newest first")
		})
	}
}

func TestReopenKeepsReports(t *testing.T) {
	ctx, s, path := openTemp(t)
	_, err := s.Save(ctx, sample(`C:\a`, 1))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	entries, err := s2.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	id, err := s2.Save(ctx, sample(`C:\b`, 1))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), id, "sequence continues after reopen")
}

func TestSaveNil(t *testing.T) {
	ctx, s, _ := openTemp(t)
	_, err := s.Save(ctx, nil)
	assert.Error(t, err)
}
