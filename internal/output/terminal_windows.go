//go:build windows

package output

import (
	"os"

	"github.com/mattn/go-isatty"
)

func checkIsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
