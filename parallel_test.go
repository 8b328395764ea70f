package dataset_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/go-sif/dataset"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestParallel(t *testing.T) {
	defer goleak.VerifyNone(t)
	o := opts(newFs(t, ".parquet", 5, 20))
	o.Columns = []string{"id"}

	var lock sync.Mutex
	var ids []int64
	workers := map[int]bool{}
	err := dataset.Parallel(context.Background(), "/data", o, 3, func(ctx context.Context, worker int, ds *dataset.Dataset) error {
		var got []int64
		for batch, err := range ds.All(ctx) {
			if err != nil {
				return err
			}
			vals, err := batch.Columns[0].Int64s()
			if err != nil {
				return err
			}
			got = append(got, vals...)
		}
		lock.Lock()
		defer lock.Unlock()
		workers[worker] = true
		ids = append(ids, got...)
		return nil
	})
	require.Nil(t, err)
	require.Len(t, workers, 3)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	require.Equal(t, sequence(0, 100), ids)
	// options passed to Parallel are not modified
	_, ok, _ := o.Worker()
	require.False(t, ok)
}

func TestParallelError(t *testing.T) {
	defer goleak.VerifyNone(t)
	o := opts(newFs(t, ".arrow", 4, 10))
	err := dataset.Parallel(context.Background(), "/data", o, 4, func(ctx context.Context, worker int, ds *dataset.Dataset) error {
		if worker == 2 {
			return fmt.Errorf("worker %d failed", worker)
		}
		for _, err := range ds.All(ctx) {
			if err != nil {
				return err
			}
		}
		return nil
	})
	require.EqualError(t, err, "worker 2 failed")
}

func TestDefaultParallelism(t *testing.T) {
	require.Greater(t, dataset.DefaultParallelism(), 0)
}
