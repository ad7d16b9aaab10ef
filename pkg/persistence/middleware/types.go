package middleware

import "github.com/aretw0/chatdialog/pkg/ports"

// Middleware allows wrapping a Storage to add behavior.
type Middleware func(ports.Storage) ports.Storage

// Chain applies middlewares so that the first one is the outermost.
func Chain(storage ports.Storage, mws ...Middleware) ports.Storage {
	for i := len(mws) - 1; i >= 0; i-- {
		storage = mws[i](storage)
	}
	return storage
}
