package orphan_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/kvs"
	"github.com/Seagate/cortx-posix-sub001/orphan"
)

type OrphanTest struct {
	suite.Suite
	ctx   context.Context
	store *kvs.MemStore
}

func TestOrphanSuite(t *testing.T) {
	suite.Run(t, new(OrphanTest))
}

func (t *OrphanTest) SetupTest() {
	t.ctx = context.Background()
	t.store = kvs.NewMemStore()
}

func (t *OrphanTest) TestUnmarkedByDefault() {
	marked, err := orphan.IsMarked(t.ctx, t.store, ino.Ino(7))
	t.Require().NoError(err)
	t.False(marked)
}

func (t *OrphanTest) TestMarkThenIsMarked() {
	t.Require().NoError(orphan.Mark(t.ctx, t.store, 7))

	marked, err := orphan.IsMarked(t.ctx, t.store, 7)
	t.Require().NoError(err)
	t.True(marked)
}

func (t *OrphanTest) TestClearRemovesMarker() {
	t.Require().NoError(orphan.Mark(t.ctx, t.store, 7))
	t.Require().NoError(orphan.Clear(t.ctx, t.store, 7))

	marked, err := orphan.IsMarked(t.ctx, t.store, 7)
	t.Require().NoError(err)
	t.False(marked)
}
