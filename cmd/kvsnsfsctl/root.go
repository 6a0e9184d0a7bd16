// Command kvsnsfsctl is an administrative CLI over a KVS-backed namespace:
// initializing a fresh index's root directory, and walking an existing one
// to check its structural invariants (spec §9, §12 "init-index / fsck
// CLI"). It is deliberately not an NFS server or mount tool — the NFS/RPC
// front end is an external collaborator out of scope for this repo (spec
// §1 Non-goals) — the way the teacher's own cmd/ package only drives
// gcsfuse's mount command, never the FUSE kernel protocol itself.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Seagate/cortx-posix-sub001/config"
	"github.com/Seagate/cortx-posix-sub001/internal/logger"
)

var (
	cfgFile       string
	bindErr       error
	configFileErr error
)

var rootCmd = &cobra.Command{
	Use:   "kvsnsfsctl",
	Short: "Administer a KVS-backed POSIX namespace",
	Long: `kvsnsfsctl initializes and inspects the KVS records backing a
kvsns-style POSIX namespace: the dentry tree, stat records, symlink
bodies and ino->fid bindings described in this repo's key codec. It does
not speak NFS or mount anything.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if bindErr != nil {
			return bindErr
		}
		if configFileErr != nil {
			return configFileErr
		}
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger.SetFormat(cfg.LogFormat)
		logger.SetLevel(cfg.LogSeverity)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "path to a YAML config file")
	bindErr = config.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(initIndexCmd)
	rootCmd.AddCommand(fsckCmd)
}

func initConfig() {
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		configFileErr = fmt.Errorf("reading config file: %w", err)
	}
}

func main() {
	Execute()
}
