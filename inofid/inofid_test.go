package inofid_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Seagate/cortx-posix-sub001/errno"
	"github.com/Seagate/cortx-posix-sub001/extstore"
	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/inofid"
	"github.com/Seagate/cortx-posix-sub001/kvs"
)

type InoFidTest struct {
	suite.Suite
	ctx   context.Context
	store *kvs.MemStore
}

func TestInoFidSuite(t *testing.T) {
	suite.Run(t, new(InoFidTest))
}

func (t *InoFidTest) SetupTest() {
	t.ctx = context.Background()
	t.store = kvs.NewMemStore()
}

func (t *InoFidTest) TestGetMissingReturnsENOENT() {
	_, err := inofid.Get(t.ctx, t.store, ino.Ino(7))
	t.ErrorIs(err, errno.ENOENT)
}

func (t *InoFidTest) TestSetThenGetRoundTrips() {
	fid := extstore.NewFid()
	t.Require().NoError(inofid.Set(t.ctx, t.store, 7, fid))

	got, err := inofid.Get(t.ctx, t.store, 7)
	t.Require().NoError(err)
	t.Equal(fid, got)
}

func (t *InoFidTest) TestDelRemovesMapping() {
	fid := extstore.NewFid()
	t.Require().NoError(inofid.Set(t.ctx, t.store, 7, fid))
	t.Require().NoError(inofid.Del(t.ctx, t.store, 7))

	_, err := inofid.Get(t.ctx, t.store, 7)
	t.ErrorIs(err, errno.ENOENT)
}
