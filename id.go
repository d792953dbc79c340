// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "code.hybscloud.com/atomix"

// ID is a process-wide fiber identifier.
// IDs increase monotonically and are never reused, so a stale ID
// resolves to nothing rather than to a different fiber.
type ID uint64

// idCounter is the global monotonic counter for fiber IDs.
var idCounter atomix.Uint64

// nextID returns the next monotonically increasing fiber ID.
func nextID() ID {
	return ID(idCounter.Add(1))
}
