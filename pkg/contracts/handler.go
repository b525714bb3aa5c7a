package contracts

import "github.com/julienschmidt/httprouter"

// Handler is a group of routes mounted on a shared router.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Handlers mounts several route groups as one.
type Handlers []Handler

func (hs Handlers) RegisterRoutes(router *httprouter.Router) {
	for _, h := range hs {
		h.RegisterRoutes(router)
	}
}
