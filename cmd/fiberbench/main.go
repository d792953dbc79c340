// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command fiberbench exercises the fiber runtime end to end.
package main

import (
	"fmt"
	"os"

	"code.hybscloud.com/fiber/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fiberbench:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
