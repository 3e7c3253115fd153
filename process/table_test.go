package process_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arinc653/p1harness/process"
)

func attr(name string, entry int32) process.Attribute {
	return process.Attribute{
		Period:       10_000_000,
		TimeCapacity: 1_000_000,
		EntryPoint:   entry,
		StackSize:    65536,
		Name:         name,
	}
}

func TestInsert_PidMonotonic(t *testing.T) {
	table := process.NewTable()

	pidA, err := table.Insert(attr("A", 7))
	require.NoError(t, err)
	require.Equal(t, 0, pidA)

	pidB, err := table.Insert(attr("B", 8))
	require.NoError(t, err)
	require.Equal(t, 1, pidB)
}

func TestInsert_DuplicateNameCaseInsensitive(t *testing.T) {
	table := process.NewTable()
	_, err := table.Insert(attr("Worker", 1))
	require.NoError(t, err)

	_, err = table.Insert(attr("worker", 2))
	require.Error(t, err)
}

func TestEnable_UnknownPid(t *testing.T) {
	table := process.NewTable()
	require.Error(t, table.Enable(0))
}

func TestSpawnAll_OnlySpawnsEnabled(t *testing.T) {
	table := process.NewTable()
	pidA, err := table.Insert(attr("A", 1))
	require.NoError(t, err)
	_, err = table.Insert(attr("B", 2))
	require.NoError(t, err)

	require.NoError(t, table.Enable(pidA))

	var spawnedPids []int
	err = table.SpawnAll(context.Background(), func(ctx context.Context, pid int, a process.Attribute) (process.Handle, error) {
		spawnedPids = append(spawnedPids, pid)
		done := make(chan error, 1)
		done <- nil
		return process.Handle{ThreadID: uint64(pid) + 100, Done: done}, nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{0}, spawnedPids)

	pA, err := table.ByPID(pidA)
	require.NoError(t, err)
	require.True(t, pA.Spawned())
}

func TestSpawnAll_RejectsRespawn(t *testing.T) {
	table := process.NewTable()
	pid, err := table.Insert(attr("A", 1))
	require.NoError(t, err)
	require.NoError(t, table.Enable(pid))

	launch := func(ctx context.Context, pid int, a process.Attribute) (process.Handle, error) {
		done := make(chan error, 1)
		done <- nil
		return process.Handle{ThreadID: 1, Done: done}, nil
	}

	require.NoError(t, table.SpawnAll(context.Background(), launch))
	err = table.SpawnAll(context.Background(), launch)
	require.Error(t, err)
}

func TestByThreadID(t *testing.T) {
	table := process.NewTable()
	pid, err := table.Insert(attr("A", 1))
	require.NoError(t, err)
	require.NoError(t, table.Enable(pid))

	require.NoError(t, table.SpawnAll(context.Background(), func(ctx context.Context, pid int, a process.Attribute) (process.Handle, error) {
		done := make(chan error, 1)
		done <- nil
		return process.Handle{ThreadID: 42, Done: done}, nil
	}))

	p, ok := table.ByThreadID(42)
	require.True(t, ok)
	require.Equal(t, "A", p.Attribute.Name)

	_, ok = table.ByThreadID(999)
	require.False(t, ok)
}

func TestDrain_Joins(t *testing.T) {
	table := process.NewTable()
	pid, err := table.Insert(attr("A", 1))
	require.NoError(t, err)
	require.NoError(t, table.Enable(pid))

	require.NoError(t, table.SpawnAll(context.Background(), func(ctx context.Context, pid int, a process.Attribute) (process.Handle, error) {
		done := make(chan error, 1)
		done <- nil
		return process.Handle{ThreadID: 1, Done: done}, nil
	}))

	procs := table.Drain(context.Background())
	require.Len(t, procs, 1)
}
