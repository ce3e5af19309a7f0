package install

import (
	"os"

	"github.com/giantswarm/microerror"

	"github.com/mewada-madhusudan/cuddly-disco/internal/system"
)

// CheckSpace verifies that the source file exists and that the volume holding
// destDir has room for it. Called before an install touches the registry so a
// doomed transfer fails fast.
func CheckSpace(src, destDir string) error {
	info, err := os.Stat(src)
	if err != nil {
		return microerror.Maskf(sourceMissingError, "source file %s is not accessible: %v", src, err)
	}

	free, err := system.FreeBytes(destDir)
	if err != nil {
		// Cannot measure the destination volume; let the transfer itself decide
		return nil
	}

	if uint64(info.Size()) > free {
		return microerror.Maskf(insufficientSpaceError,
			"not enough disk space: need %d bytes, %d free", info.Size(), free)
	}
	return nil
}
