package scaffolding

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	ferrors "github.com/conneroisu/forge/internal/errors"
	"github.com/conneroisu/forge/internal/logging"
)

const (
	dirPerm      os.FileMode = 0755
	ownerRWPerms os.FileMode = 0600
)

// Stats counts what one or more materializations wrote.
type Stats struct {
	Files int
	Dirs  int
	Bytes int64
}

func (s *Stats) add(o Stats) {
	s.Files += o.Files
	s.Dirs += o.Dirs
	s.Bytes += o.Bytes
}

// MaterializerOptions configures a Materializer.
type MaterializerOptions struct {
	// Workers bounds concurrent file copies within one directory.
	Workers int
	Logger  logging.Logger
}

// Materializer copies directory trees byte for byte.
type Materializer struct {
	workers int
	logger  logging.Logger
}

// NewMaterializer creates a materializer.
func NewMaterializer(opts MaterializerOptions) *Materializer {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	return &Materializer{
		workers: workers,
		logger:  logger.WithComponent("materializer"),
	}
}

type dirPair struct {
	src, dst string
	// chain holds the resolved paths of this directory and its ancestors.
	chain []string
}

type filePair struct {
	src, dst string
}

// Materialize copies every entry of src into dst, preserving relative paths
// and file bytes. dst and its missing ancestors are created first.
// Directories are walked with a FIFO work-list. Symlinks are followed; a
// link back to one of its own ancestors fails with IoFailure. Entries
// written before a failure stay on disk; callers wanting all-or-nothing
// materialize into a staging directory.
func (m *Materializer) Materialize(ctx context.Context, src, dst string) (Stats, error) {
	var stats Stats

	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, ferrors.ErrSourceNotFoundAt(src, err).WithComponent("materializer")
		}
		return stats, ferrors.ErrIOFailureAt("stat", src, err).WithComponent("materializer")
	}
	if !info.IsDir() {
		return stats, ferrors.ErrSourceNotFoundAt(src, nil).
			WithComponent("materializer").
			WithContext("reason", "not a directory")
	}

	if err := os.MkdirAll(dst, dirPerm); err != nil {
		return stats, ferrors.ErrIOFailureAt("mkdir", dst, err).WithComponent("materializer")
	}

	realSrc, err := filepath.EvalSymlinks(src)
	if err != nil {
		return stats, ferrors.ErrIOFailureAt("resolve", src, err).WithComponent("materializer")
	}
	realSrc, _ = filepath.Abs(realSrc)

	queue := []dirPair{{src: src, dst: dst, chain: []string{realSrc}}}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return stats, canceled(err)
		}

		current := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(current.src)
		if err != nil {
			return stats, ferrors.ErrIOFailureAt("read", current.src, err).WithComponent("materializer")
		}

		var files []filePair
		for _, entry := range entries {
			name := entry.Name()
			srcPath := filepath.Join(current.src, name)
			dstPath := filepath.Join(current.dst, name)

			isDir := entry.IsDir()
			realPath := filepath.Join(current.chain[len(current.chain)-1], name)
			if entry.Type()&os.ModeSymlink != 0 {
				isDir, realPath, err = resolveLink(srcPath, current.chain)
				if err != nil {
					return stats, err
				}
			}

			if isDir {
				if err := os.MkdirAll(dstPath, dirPerm); err != nil {
					return stats, ferrors.ErrIOFailureAt("mkdir", dstPath, err).WithComponent("materializer")
				}
				stats.Dirs++
				chain := append(current.chain[:len(current.chain):len(current.chain)], realPath)
				queue = append(queue, dirPair{src: srcPath, dst: dstPath, chain: chain})
				continue
			}

			files = append(files, filePair{src: srcPath, dst: dstPath})
		}

		copied, err := m.copyFiles(ctx, files)
		stats.add(copied)
		if err != nil {
			return stats, err
		}
	}

	m.logger.Debug(ctx, "Materialized tree",
		"source", src,
		"dest", dst,
		"files", stats.Files,
		"dirs", stats.Dirs,
		"bytes", stats.Bytes,
	)

	return stats, nil
}

// resolveLink follows the symlink at path. For a directory target it
// returns the resolved path and rejects targets already on chain.
func resolveLink(path string, chain []string) (bool, string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, "", ferrors.ErrIOFailureAt("follow", path, err).WithComponent("materializer")
	}
	if !info.IsDir() {
		return false, "", nil
	}

	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false, "", ferrors.ErrIOFailureAt("resolve", path, err).WithComponent("materializer")
	}
	target, _ = filepath.Abs(target)

	for _, ancestor := range chain {
		if ancestor == target {
			return false, "", ferrors.ErrIOFailureAt("follow", path, nil).
				WithComponent("materializer").
				WithContext("reason", "symlink loop").
				WithContext("target", target)
		}
	}

	return true, target, nil
}

func canceled(err error) error {
	return ferrors.NewInternalError(ferrors.ErrCodeInternalError, "materialize canceled", err).
		WithComponent("materializer")
}

// copyFiles copies the files of one directory, concurrently when more than
// one worker is configured.
func (m *Materializer) copyFiles(ctx context.Context, files []filePair) (Stats, error) {
	var stats Stats

	if m.workers == 1 || len(files) < 2 {
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return stats, canceled(err)
			}
			n, err := CopyFile(f.src, f.dst)
			if err != nil {
				return stats, err
			}
			stats.Files++
			stats.Bytes += n
		}
		return stats, nil
	}

	var count, bytes atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)
	for _, f := range files {
		f := f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return canceled(err)
			}
			n, err := CopyFile(f.src, f.dst)
			if err != nil {
				return err
			}
			count.Add(1)
			bytes.Add(n)
			return nil
		})
	}
	err := g.Wait()

	stats.Files = int(count.Load())
	stats.Bytes = bytes.Load()
	return stats, err
}

// CopyFile copies the bytes of src to dst, creating dst's parent directory
// if needed and truncating an existing dst. Permission bits are carried
// over with owner read/write always set. It returns the bytes written.
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, ferrors.ErrIOFailureAt("open", src, err).WithComponent("materializer")
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, ferrors.ErrIOFailureAt("stat", src, err).WithComponent("materializer")
	}

	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return 0, ferrors.ErrIOFailureAt("mkdir", filepath.Dir(dst), err).WithComponent("materializer")
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()|ownerRWPerms)
	if err != nil {
		return 0, ferrors.ErrIOFailureAt("create", dst, err).WithComponent("materializer")
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, ferrors.ErrIOFailureAt("copy", src, err).WithComponent("materializer")
	}

	if err := out.Close(); err != nil {
		return n, ferrors.ErrIOFailureAt("write", dst, err).WithComponent("materializer")
	}

	return n, nil
}
