package extstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Seagate/cortx-posix-sub001/errno"
	"github.com/Seagate/cortx-posix-sub001/extstore"
)

type ExtStoreTest struct {
	suite.Suite
	ctx   context.Context
	store *extstore.MemStore
	fid   extstore.Fid
}

func TestExtStoreSuite(t *testing.T) {
	suite.Run(t, new(ExtStoreTest))
}

func (t *ExtStoreTest) SetupTest() {
	t.ctx = context.Background()
	t.store = extstore.NewMemStore()
	t.fid = extstore.NewFid()
	t.Require().NoError(t.store.Create(t.ctx, t.fid))
}

func (t *ExtStoreTest) TestCreateTwiceFails() {
	err := t.store.Create(t.ctx, t.fid)
	t.ErrorIs(err, errno.EEXIST)
}

func (t *ExtStoreTest) TestReadOnEmptyObjectIsImmediateEOF() {
	buf := make([]byte, 16)
	n, eof, _, err := t.store.Read(t.ctx, t.fid, 0, buf)
	t.Require().NoError(err)
	t.True(eof)
	t.Zero(n)
}

func (t *ExtStoreTest) TestWriteThenReadRoundTrips() {
	n, hint, err := t.store.Write(t.ctx, t.fid, 0, []byte("hello"), false)
	t.Require().NoError(err)
	t.Equal(5, n)
	t.EqualValues(5, hint.Size)
	t.True(hint.HasMtime)

	buf := make([]byte, 5)
	n, eof, _, err := t.store.Read(t.ctx, t.fid, 0, buf)
	t.Require().NoError(err)
	t.True(eof)
	t.Equal("hello", string(buf[:n]))
}

func (t *ExtStoreTest) TestWriteAtOffsetGrowsObject() {
	_, _, err := t.store.Write(t.ctx, t.fid, 3, []byte("xy"), false)
	t.Require().NoError(err)

	buf := make([]byte, 5)
	n, _, _, err := t.store.Read(t.ctx, t.fid, 0, buf)
	t.Require().NoError(err)
	t.Equal(5, n)
	t.Equal(byte('x'), buf[3])
	t.Equal(byte('y'), buf[4])
}

func (t *ExtStoreTest) TestTruncateShrinksAndGrows() {
	_, _, err := t.store.Write(t.ctx, t.fid, 0, []byte("hello"), false)
	t.Require().NoError(err)

	hint, err := t.store.Truncate(t.ctx, t.fid, 2)
	t.Require().NoError(err)
	t.EqualValues(2, hint.Size)

	hint, err = t.store.Truncate(t.ctx, t.fid, 10)
	t.Require().NoError(err)
	t.EqualValues(10, hint.Size)
}

func (t *ExtStoreTest) TestDelThenOperationsReturnENOENT() {
	t.Require().NoError(t.store.Del(t.ctx, t.fid))
	t.False(t.store.Exists(t.fid))

	_, _, _, err := t.store.Read(t.ctx, t.fid, 0, make([]byte, 1))
	t.ErrorIs(err, errno.ENOENT)

	err = t.store.Del(t.ctx, t.fid)
	t.ErrorIs(err, errno.ENOENT)
}

func (t *ExtStoreTest) TestFidStringAndZero() {
	var zero extstore.Fid
	t.True(zero.IsZero())
	t.False(t.fid.IsZero())
	t.NotEmpty(t.fid.String())
}
