// Package keycodec packs and unpacks the raw binary keys stored in the KVS
// (spec §3.2, §4.3). Every key begins or embeds a two-byte metadata header
// (type, version); the header lets the on-disk format evolve without
// invalidating existing records. Keys are raw bytes with no padding,
// compared lexicographically by the KVS, so field order is chosen
// deliberately: placing pino first in the dentry key clusters a directory's
// children together, which is what makes prefix scanning an efficient
// directory listing.
package keycodec

import (
	"encoding/binary"

	"github.com/Seagate/cortx-posix-sub001/errno"
)

// KeyType tags the logical record a key belongs to.
type KeyType uint8

const (
	TypeDentry   KeyType = 1
	TypeParent   KeyType = 2
	TypeStat     KeyType = 3
	TypeSymlink  KeyType = 4
	TypeInoFid   KeyType = 5
	TypeCounter  KeyType = 6
	TypeOrphan   KeyType = 7
)

// Version is the current on-disk format version for every key type in this
// package. A future incompatible change bumps this and teaches the decoder
// to branch on the value read back from a stored key.
const Version uint8 = 0

// MaxNameLen is the largest permitted dentry name, per spec §3.1/§3.3.
const MaxNameLen = 255

var nameTooLong = errno.E2BIG

// EncodeDentry packs a (pino, name) dentry key: pino | type | ver | name_len
// | name | NUL.
func EncodeDentry(pino uint64, name string) ([]byte, error) {
	if l := len(name); l < 1 || l > MaxNameLen {
		return nil, nameTooLong
	}
	if name == "." || name == ".." {
		return nil, errno.EINVAL
	}
	buf := make([]byte, 8+1+1+1+len(name)+1)
	binary.BigEndian.PutUint64(buf[0:8], pino)
	buf[8] = byte(TypeDentry)
	buf[9] = Version
	buf[10] = byte(len(name))
	copy(buf[11:11+len(name)], name)
	buf[11+len(name)] = 0
	return buf, nil
}

// DentryPrefixLen is the size of the fixed header shared by every dentry key
// under a given parent: pino | type | ver.
const DentryPrefixLen = 8 + 1 + 1

// EncodeDentryPrefix returns the minimal byte string that is a proper prefix
// of every dentry key under pino, and lexicographically precedes them all
// (since name_len >= 1 always sorts after the bare header).
func EncodeDentryPrefix(pino uint64) []byte {
	buf := make([]byte, DentryPrefixLen)
	binary.BigEndian.PutUint64(buf[0:8], pino)
	buf[8] = byte(TypeDentry)
	buf[9] = Version
	return buf
}

// DecodeDentry extracts the child's name from an encoded dentry key. It
// assumes the key was produced by EncodeDentry (or matched the prefix
// produced by EncodeDentryPrefix during a scan).
func DecodeDentry(key []byte) (pino uint64, name string, err error) {
	if len(key) < DentryPrefixLen+1+1 {
		return 0, "", errno.EINVAL
	}
	pino = binary.BigEndian.Uint64(key[0:8])
	if KeyType(key[8]) != TypeDentry {
		return 0, "", errno.EINVAL
	}
	nameLen := int(key[10])
	if len(key) != DentryPrefixLen+1+nameLen+1 {
		return 0, "", errno.EINVAL
	}
	name = string(key[11 : 11+nameLen])
	return pino, name, nil
}

// EncodeParent packs the reverse parent-link key: ino | type | ver | pino.
func EncodeParent(ino, pino uint64) []byte {
	buf := make([]byte, 8+1+1+8)
	binary.BigEndian.PutUint64(buf[0:8], ino)
	buf[8] = byte(TypeParent)
	buf[9] = Version
	binary.BigEndian.PutUint64(buf[10:18], pino)
	return buf
}

// EncodeInodeAttr packs a single-field key of the form ino | type | ver used
// for stat, symlink body, ino->fid mapping, and the orphan marker.
func EncodeInodeAttr(ino uint64, kind KeyType) []byte {
	buf := make([]byte, 8+1+1)
	binary.BigEndian.PutUint64(buf[0:8], ino)
	buf[8] = byte(kind)
	buf[9] = Version
	return buf
}

// EncodeCounter packs a well-known ASCII-named counter key.
func EncodeCounter(name string) []byte {
	buf := make([]byte, len(name)+1+1)
	copy(buf, name)
	buf[len(name)] = byte(TypeCounter)
	buf[len(name)+1] = Version
	return buf
}

// InoCounterKey is the persisted key backing the monotonic inode allocator.
var InoCounterKey = EncodeCounter("ino_counter")
