package middleware

import "github.com/danielgtaylor/huma/v2"

// Container accumulates the middleware stack for one handler and
// hands it over, leaving itself empty for the next handler's stack.
type Container struct {
	middlewares huma.Middlewares
}

func NewContainer() *Container {
	return &Container{}
}

func (c *Container) Add(mw func(huma.Context, func(huma.Context))) {
	c.middlewares = append(c.middlewares, mw)
}

func (c *Container) GetAllAndClear() huma.Middlewares {
	out := c.middlewares
	c.middlewares = nil
	return out
}
