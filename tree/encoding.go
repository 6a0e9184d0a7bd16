package tree

import (
	"encoding/binary"

	"github.com/Seagate/cortx-posix-sub001/errno"
	"github.com/Seagate/cortx-posix-sub001/ino"
)

func encodeIno(i ino.Ino) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(i))
	return buf
}

func decodeIno(raw []byte) (ino.Ino, error) {
	if len(raw) != 8 {
		return 0, errno.EINVAL
	}
	return ino.Ino(binary.BigEndian.Uint64(raw)), nil
}

func encodeU32(n uint32) []byte {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, n)
	return buf
}

func decodeU32(raw []byte) uint32 {
	return binary.BigEndian.Uint32(raw)
}
