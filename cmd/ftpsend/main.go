// ftpsend uploads files and folders to an FTP server in one shot, without
// the interactive browser. Folders are walked recursively, directories
// before files.
package main

import (
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/trungnl/ftptui/pkg/config"
	"github.com/trungnl/ftptui/pkg/ftpx"
	"github.com/trungnl/ftptui/pkg/listing"
)

const connectTimeout = 10 * time.Second

var serverFlag string

var rootCmd = &cobra.Command{
	Use:   "ftpsend <file|folder>...",
	Short: "Upload files and folders to an FTP server",
	Args:  cobra.MinimumNArgs(1),
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&serverFlag, "server", "", "server as host:port (defaults to the saved config)")
	rootCmd.SilenceUsage = true
}

func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Drop inputs that do not exist rather than aborting the whole batch.
	var inputs []string
	for _, arg := range args {
		if _, err := os.Stat(arg); err != nil {
			fmt.Fprintf(os.Stderr, "skipping %s: %v\n", arg, err)
			continue
		}
		inputs = append(inputs, arg)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no valid inputs")
	}

	host, port, err := resolveServer()
	if err != nil {
		return err
	}

	files, bytes, err := countInputs(inputs)
	if err != nil {
		return err
	}
	fmt.Printf("Uploading %d file(s), %s to %s:%d\n", files, listing.FormatSize(bytes), host, port)

	conn, err := ftpx.DialAndLogin(host, port, config.DefaultUser, "", connectTimeout)
	if err != nil {
		return err
	}
	defer conn.Quit()

	u := uploader{conn: conn}
	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			u.failed++
			fmt.Fprintf(os.Stderr, "failed %s: %v\n", input, err)
			continue
		}
		if info.IsDir() {
			u.uploadDir(input, filepath.Base(input))
		} else {
			u.uploadFile(input, filepath.Base(input), info.Size())
		}
	}

	fmt.Printf("Done: %d uploaded, %d failed\n", u.uploaded, u.failed)
	if u.failed > 0 {
		return fmt.Errorf("%d upload(s) failed", u.failed)
	}
	return nil
}

func resolveServer() (string, int, error) {
	if serverFlag != "" {
		host, portStr, err := net.SplitHostPort(serverFlag)
		if err != nil {
			return serverFlag, 21, nil
		}
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return "", 0, fmt.Errorf("invalid port in %q", serverFlag)
		}
		return host, port, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", 0, err
	}
	store, err := config.NewStore(filepath.Join(homeDir, ".ftptui"))
	if err != nil {
		return "", 0, err
	}
	cfg := store.Get()
	return cfg.Host, cfg.Port, nil
}

func countInputs(inputs []string) (int, int64, error) {
	files := 0
	var bytes int64
	for _, input := range inputs {
		err := filepath.WalkDir(input, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			files++
			bytes += info.Size()
			return nil
		})
		if err != nil {
			return 0, 0, err
		}
	}
	return files, bytes, nil
}

type uploader struct {
	conn     ftpx.Conn
	uploaded int
	failed   int
}

func (u *uploader) uploadFile(localPath, remoteName string, size int64) {
	f, err := os.Open(localPath)
	if err != nil {
		u.failed++
		fmt.Fprintf(os.Stderr, "failed %s: %v\n", localPath, err)
		return
	}
	defer f.Close()

	bar := progressbar.DefaultBytes(size, remoteName)
	err = u.conn.Store(remoteName, io.TeeReader(f, bar))
	_ = bar.Finish()
	if err != nil {
		u.failed++
		fmt.Fprintf(os.Stderr, "failed %s: %v\n", localPath, err)
		return
	}
	u.uploaded++
}

func (u *uploader) uploadDir(localDir, remoteRel string) {
	// The directory may already exist; failures surface on the stores.
	_ = u.conn.MakeDir(remoteRel)

	entries, err := listing.ReadLocal(localDir)
	if err != nil {
		u.failed++
		fmt.Fprintf(os.Stderr, "failed %s: %v\n", localDir, err)
		return
	}

	for _, entry := range entries {
		localPath := filepath.Join(localDir, entry.Name)
		remotePath := path.Join(remoteRel, entry.Name)
		if entry.IsDir {
			u.uploadDir(localPath, remotePath)
			continue
		}
		u.uploadFile(localPath, remotePath, entry.Size)
	}
}
