package errno_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/Seagate/cortx-posix-sub001/errno"
)

type ErrnoTest struct {
	suite.Suite
}

func TestErrnoSuite(t *testing.T) {
	suite.Run(t, new(ErrnoTest))
}

func (t *ErrnoTest) TestIsMatchesByErrnoNotIdentity() {
	wrapped := errno.ENOENT.Wrap("lookup")
	t.ErrorIs(wrapped, errno.ENOENT)
	t.False(errors.Is(wrapped, errno.EACCES))
}

func (t *ErrnoTest) TestWrapPreservesContextInMessage() {
	wrapped := errno.ENOENT.Wrap("lookup")
	t.Contains(wrapped.Error(), "lookup")
}

func (t *ErrnoTest) TestFromErrnoRoundTripsKnownValues() {
	t.ErrorIs(errno.FromErrno(errno.EACCES.Errno), errno.EACCES)
	t.ErrorIs(errno.FromErrno(errno.ENOENT.Errno), errno.ENOENT)
}

func (t *ErrnoTest) TestFromErrnoZeroIsNil() {
	t.NoError(errno.FromErrno(0))
}

func (t *ErrnoTest) TestFromErrnoUnmappedFallsBackToEIO() {
	t.ErrorIs(errno.FromErrno(999999), errno.EIO)
}

func (t *ErrnoTest) TestErrorsAsRecoversSentinel() {
	wrapped := fmt.Errorf("create: %w", errno.EEXIST)
	var target *errno.Error
	t.Require().True(errors.As(wrapped, &target))
	t.Equal(errno.EEXIST.Errno, target.Errno)
}
