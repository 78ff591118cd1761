package pg

import (
	"context"
	"testing"

	"mapbench/bench"

	"github.com/stretchr/testify/assert"
)

type foreignConn struct{}

func (foreignConn) Close(ctx context.Context) error { return nil }

func TestExecutorRejectsForeignConn(t *testing.T) {
	s := Executor{}.Execute(context.Background(), foreignConn{}, bench.QueryParams{Key: "t001", Version: 1})
	assert.Error(t, s.Err)
	assert.True(t, s.Failed())
}
