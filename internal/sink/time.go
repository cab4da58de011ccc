// SPDX-License-Identifier: MIT
package sink

import "time"

func unixNano() int64 {
	return time.Now().UnixNano()
}
