package install

import (
	"context"
	"io"
	"os"

	"github.com/giantswarm/microerror"
)

// chunkSize is the fixed transfer chunk of 1 KiB.
const chunkSize = 1024

// CopyChunked copies the file at src to dst in fixed 1 KiB chunks, invoking
// onProgress with the whole-percent completion after every chunk. The final
// emission is always exactly 100; a zero-length source emits a single 100.
//
// The copy is not atomic: a failure mid-copy leaves the partial destination
// in place for the caller to clean up. The context is checked between chunks
// so a cancelled copy stops promptly without writing further.
func CopyChunked(ctx context.Context, src, dst string, onProgress func(percent int)) error {
	info, err := os.Stat(src)
	if err != nil {
		return microerror.Maskf(sourceMissingError, "source %s: %v", src, err)
	}
	total := info.Size()

	in, err := os.Open(src)
	if err != nil {
		return microerror.Maskf(sourceMissingError, "opening source %s: %v", src, err)
	}
	defer in.Close()

	// Carry the source permissions over so executables stay executable.
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return microerror.Maskf(ioFailureError, "creating destination %s: %v", dst, err)
	}

	if total == 0 {
		if err := out.Close(); err != nil {
			return microerror.Maskf(ioFailureError, "closing destination %s: %v", dst, err)
		}
		if onProgress != nil {
			onProgress(100)
		}
		return nil
	}

	var copied int64
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			out.Close()
			return err
		}

		n, readErr := in.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				out.Close()
				return microerror.Maskf(ioFailureError, "writing %s: %v", dst, writeErr)
			}
			copied += int64(n)
			if onProgress != nil {
				onProgress(int(copied * 100 / total))
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			out.Close()
			return microerror.Maskf(ioFailureError, "reading %s: %v", src, readErr)
		}
	}

	if err := out.Close(); err != nil {
		return microerror.Maskf(ioFailureError, "closing destination %s: %v", dst, err)
	}

	return nil
}
