package io_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Seagate/cortx-posix-sub001/extstore"
	"github.com/Seagate/cortx-posix-sub001/filestate"
	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/inofid"
	kvsio "github.com/Seagate/cortx-posix-sub001/io"
	"github.com/Seagate/cortx-posix-sub001/kvs"
	"github.com/Seagate/cortx-posix-sub001/statstore"
)

type IOTest struct {
	suite.Suite
	ctx   context.Context
	store *kvs.MemStore
	ext   *extstore.MemStore
	path  *kvsio.Path
	reg   *filestate.Registry
	ino   ino.Ino
}

func TestIOSuite(t *testing.T) {
	suite.Run(t, new(IOTest))
}

func (s *IOTest) SetupTest() {
	s.ctx = context.Background()
	s.store = kvs.NewMemStore()
	s.ext = extstore.NewMemStore()
	s.reg = filestate.NewRegistry()
	s.path = &kvsio.Path{Store: s.store, Ext: s.ext, Now: func() time.Time { return time.Unix(42, 0) }}

	s.ino = ino.Ino(100)
	s.Require().NoError(statstore.Set(s.ctx, s.store, &statstore.Stat{
		Ino: s.ino, Mode: os.FileMode(0o644),
	}))
	fid := extstore.NewFid()
	s.Require().NoError(s.ext.Create(s.ctx, fid))
	s.Require().NoError(inofid.Set(s.ctx, s.store, s.ino, fid))
}

func (s *IOTest) openState(flags filestate.OpenFlags) *filestate.FileState {
	state := &filestate.FileState{}
	s.Require().NoError(filestate.Open(s.ctx, s.reg, state, flags, s.ino, false, filestate.Backend{}))
	return state
}

func (s *IOTest) TestWriteThenReadRoundTrip() {
	state := s.openState(filestate.Read | filestate.Write)

	n, err := s.path.Write(s.ctx, state, 0, []byte("hello"), true)
	s.Require().NoError(err)
	s.Equal(5, n)

	buf := make([]byte, 5)
	n, eof, err := s.path.Read(s.ctx, state, 0, buf)
	s.Require().NoError(err)
	s.Equal(5, n)
	s.True(eof)
	s.Equal("hello", string(buf))

	st, err := statstore.Get(s.ctx, s.store, s.ino)
	s.Require().NoError(err)
	s.Equal(int64(5), st.Size)
}

func (s *IOTest) TestReadRequiresReadFlag() {
	state := s.openState(filestate.Write)
	buf := make([]byte, 4)
	_, _, err := s.path.Read(s.ctx, state, 0, buf)
	s.Error(err)
}

func (s *IOTest) TestTruncateMergesSizeHint() {
	state := s.openState(filestate.Write)
	s.Require().NoError(s.path.Truncate(s.ctx, state, 10))

	st, err := statstore.Get(s.ctx, s.store, s.ino)
	s.Require().NoError(err)
	s.Equal(int64(10), st.Size)
}
