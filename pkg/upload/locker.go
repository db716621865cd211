package upload

import "context"

// Locker provides mutual exclusion across processes or hosts sharing a
// destination directory. The filesystem claim used by auto-rename only
// protects savers on the same filesystem view.
type Locker interface {
	// Lock blocks until key is held or ctx is done. The returned function releases it.
	Lock(ctx context.Context, key string) (unlock func(context.Context) error, err error)
}
