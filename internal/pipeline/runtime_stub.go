//go:build !govips || !cgo

package pipeline

// Startup is a no-op in the pure-Go build.
func Startup() error {
	return nil
}

// Shutdown is a no-op in the pure-Go build.
func Shutdown() {}

func newTransformer() (Transformer, error) {
	return stdlibTransformer{}, nil
}
