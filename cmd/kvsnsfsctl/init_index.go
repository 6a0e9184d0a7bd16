package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/Seagate/cortx-posix-sub001/config"
	"github.com/Seagate/cortx-posix-sub001/ino"
	"github.com/Seagate/cortx-posix-sub001/internal/logger"
	"github.com/Seagate/cortx-posix-sub001/kvs"
	"github.com/Seagate/cortx-posix-sub001/statstore"
)

var initIndexCmd = &cobra.Command{
	Use:   "init-index",
	Short: "Seed a fresh index with the inode counter and root directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return runInitIndex(cmd.Context(), cfg)
	},
}

// runInitIndex is the Go-native equivalent of the original's ns_init
// (original_source/nsal/src/include/namespace.h): seed the monotonic inode
// counter and, if absent, the root directory's stat record (spec §4.4,
// §4.7).
func runInitIndex(ctx context.Context, cfg config.Config) error {
	return seedRootFor(ctx, newStore(cfg), cfg)
}

func seedRootFor(ctx context.Context, store kvs.Store, cfg config.Config) error {
	if err := ino.Init(ctx, store); err != nil {
		return err
	}

	if _, err := statstore.Get(ctx, store, ino.RootIno); err == nil {
		logger.Infof("index %q already initialized", cfg.IndexName)
		return nil
	}

	root := &statstore.Stat{
		Ino:   ino.RootIno,
		Mode:  os.FileMode(cfg.DirPerms) | os.ModeDir,
		Nlink: 2,
		Uid:   cfg.RootUid,
		Gid:   cfg.RootGid,
	}
	if err := statstore.Set(ctx, store, root); err != nil {
		return err
	}

	logger.Infof("index %q initialized with root inode %d", cfg.IndexName, ino.RootIno)
	return nil
}
