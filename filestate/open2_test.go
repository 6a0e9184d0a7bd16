package filestate_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Seagate/cortx-posix-sub001/accesscheck"
	"github.com/Seagate/cortx-posix-sub001/clock"
	"github.com/Seagate/cortx-posix-sub001/extstore"
	"github.com/Seagate/cortx-posix-sub001/filestate"
	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/inofid"
	"github.com/Seagate/cortx-posix-sub001/kvs"
	"github.com/Seagate/cortx-posix-sub001/namespace"
	"github.com/Seagate/cortx-posix-sub001/statstore"
)

var open2Cred = accesscheck.Cred{Uid: 0, Gid: 0}

type Open2Test struct {
	suite.Suite
	ctx   context.Context
	store *kvs.MemStore
	ext   *extstore.MemStore
	ns    *namespace.Namespace
	reg   *filestate.Registry
}

func TestOpen2Suite(t *testing.T) {
	suite.Run(t, new(Open2Test))
}

func (s *Open2Test) SetupTest() {
	s.ctx = context.Background()
	s.store = kvs.NewMemStore()
	s.ext = extstore.NewMemStore()
	require.NoError(s.T(), ino.Init(s.ctx, s.store))
	require.NoError(s.T(), statstore.Set(s.ctx, s.store, &statstore.Stat{
		Ino: ino.RootIno, Mode: os.ModeDir | 0o755, Nlink: 2,
	}))
	s.ns = namespace.New(s.store, s.ext, 0, clock.NewSimulatedClock(time.Unix(1000, 0)))
	s.reg = filestate.NewRegistry()
}

func (s *Open2Test) TestCreateLeavesFreshTargetEmpty() {
	state, target, st, err := filestate.Open2(
		s.ctx, s.reg, s.store, s.ext, s.ns, open2Cred, filestate.Owner{}, ino.RootIno, "f",
		true, namespace.CreateUnchecked, 0o644, [8]byte{}, false, filestate.Write, filestate.Backend{},
	)
	s.Require().NoError(err)
	s.Require().NoError(filestate.Close(s.ctx, s.reg, state, filestate.Backend{}))
	s.Equal(int64(0), st.Size)

	got, err := statstore.Get(s.ctx, s.store, target)
	s.Require().NoError(err)
	s.Equal(int64(0), got.Size)
}

func (s *Open2Test) TestOpenExistingWithTruncZerosData() {
	state, firstTarget, _, err := filestate.Open2(
		s.ctx, s.reg, s.store, s.ext, s.ns, open2Cred, filestate.Owner{}, ino.RootIno, "f",
		true, namespace.CreateUnchecked, 0o644, [8]byte{}, false, filestate.Write, filestate.Backend{},
	)
	s.Require().NoError(err)
	s.Require().NoError(filestate.Close(s.ctx, s.reg, state, filestate.Backend{}))

	fid, err := inofid.Get(s.ctx, s.store, firstTarget)
	s.Require().NoError(err)
	_, err = s.ext.Write(s.ctx, fid, 0, []byte("hello"), true)
	s.Require().NoError(err)

	state, secondTarget, st, err := filestate.Open2(
		s.ctx, s.reg, s.store, s.ext, s.ns, open2Cred, filestate.Owner{}, ino.RootIno, "f",
		true, namespace.CreateUnchecked, 0o644, [8]byte{}, true, filestate.Write, filestate.Backend{},
	)
	s.Require().NoError(err)
	s.Require().NoError(filestate.Close(s.ctx, s.reg, state, filestate.Backend{}))

	s.Equal(firstTarget, secondTarget, "CreateUnchecked reopen must resolve to the same existing inode")
	s.Equal(int64(0), st.Size, "O_TRUNC on an existing target must zero its recorded size")

	buf := make([]byte, 5)
	n, _, _, err := s.ext.Read(s.ctx, fid, 0, buf)
	s.Require().NoError(err)
	s.Equal(0, n, "O_TRUNC on an existing target must discard its prior data")
}
