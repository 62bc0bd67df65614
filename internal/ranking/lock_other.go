//go:build !unix

package ranking

import "os"

// Without flock, appends are serialised by Store.mu only.
func lockFile(*os.File, bool) error { return nil }

func unlockFile(*os.File) error { return nil }
