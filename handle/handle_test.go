package handle_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Seagate/cortx-posix-sub001/accesscheck"
	"github.com/Seagate/cortx-posix-sub001/errno"
	"github.com/Seagate/cortx-posix-sub001/handle"
	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/kvs"
	"github.com/Seagate/cortx-posix-sub001/statstore"
	"github.com/Seagate/cortx-posix-sub001/tree"
)

type HandleTest struct {
	suite.Suite
	ctx   context.Context
	store *kvs.MemStore
	cred  accesscheck.Cred
}

func TestHandleSuite(t *testing.T) {
	suite.Run(t, new(HandleTest))
}

func (t *HandleTest) SetupTest() {
	t.ctx = context.Background()
	t.store = kvs.NewMemStore()
	t.cred = accesscheck.Cred{Uid: 0, Gid: 0}

	t.Require().NoError(statstore.Set(t.ctx, t.store, &statstore.Stat{
		Ino: ino.RootIno, Mode: os.ModeDir | 0o755, Nlink: 2,
	}))
	t.Require().NoError(statstore.Set(t.ctx, t.store, &statstore.Stat{
		Ino: 10, Mode: 0o644, Nlink: 1, Uid: 5, Gid: 5,
	}))

	tx, err := t.store.BeginTx(t.ctx)
	t.Require().NoError(err)
	t.Require().NoError(tree.Attach(t.ctx, tx, ino.RootIno, 10, "file", time.Unix(1, 0)))
	t.Require().NoError(tx.Commit(t.ctx))
}

func (t *HandleTest) TestGetRootBuildsValidHandle() {
	fh, err := handle.GetRoot(t.ctx, t.store, t.cred, 0)
	t.Require().NoError(err)
	t.True(fh.Valid())
	t.Equal(ino.RootIno, fh.Ino)
}

func (t *HandleTest) TestLookupResolvesChild() {
	root, err := handle.GetRoot(t.ctx, t.store, t.cred, 0)
	t.Require().NoError(err)

	child, err := handle.Lookup(t.ctx, t.store, t.cred, root, "file")
	t.Require().NoError(err)
	t.EqualValues(10, child.Ino)
}

func (t *HandleTest) TestLookupMissingReturnsENOENT() {
	root, err := handle.GetRoot(t.ctx, t.store, t.cred, 0)
	t.Require().NoError(err)

	_, err = handle.Lookup(t.ctx, t.store, t.cred, root, "nope")
	t.ErrorIs(err, errno.ENOENT)
}

func (t *HandleTest) TestRootDotDotResolvesToItself() {
	root, err := handle.GetRoot(t.ctx, t.store, t.cred, 0)
	t.Require().NoError(err)

	same, err := handle.Lookup(t.ctx, t.store, t.cred, root, "..")
	t.Require().NoError(err)
	t.Equal(root.Ino, same.Ino)
}

func (t *HandleTest) TestSerializeDeserializeRoundTrips() {
	fh, err := handle.FromIno(t.ctx, t.store, 3, 10, nil)
	t.Require().NoError(err)

	buf := make([]byte, handle.WireSize)
	n, err := handle.Serialize(fh, buf)
	t.Require().NoError(err)
	t.Equal(handle.WireSize, n)

	got, err := handle.Deserialize(t.ctx, t.store, buf)
	t.Require().NoError(err)
	t.Equal(fh.FsRef, got.FsRef)
	t.Equal(fh.Ino, got.Ino)
}

func (t *HandleTest) TestSerializeRejectsUndersizedBuffer() {
	fh, err := handle.FromIno(t.ctx, t.store, 0, 10, nil)
	t.Require().NoError(err)

	_, err = handle.Serialize(fh, make([]byte, handle.WireSize-1))
	t.ErrorIs(err, errno.ENOBUFS)
}

func (t *HandleTest) TestDeserializeRejectsZeroIno() {
	buf := make([]byte, handle.WireSize)
	_, err := handle.Deserialize(t.ctx, t.store, buf)
	t.ErrorIs(err, errno.EINVAL)
}

func (t *HandleTest) TestDestroyIsIdempotentAndNilSafe() {
	fh, err := handle.FromIno(t.ctx, t.store, 0, 10, nil)
	t.Require().NoError(err)

	handle.Destroy(fh)
	t.False(fh.Valid())
	handle.Destroy(fh)
	handle.Destroy(nil)
}

func (t *HandleTest) TestDedupKeyComparable() {
	a := handle.Key{FsRef: 1, Ino: 10}
	b := handle.Key{FsRef: 1, Ino: 10}
	t.Equal(a, b)
}
