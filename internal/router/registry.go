package router

import "github.com/gin-gonic/gin"

// Registry collects modules and mounts them: API modules under /api, root modules on the engine.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
	root        []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api}
}

// Use adds middleware applied to every /api route.
func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// AddRoot adds a module mounted outside /api, such as health and metrics.
func (r *Registry) AddRoot(mod Module) {
	r.root = append(r.root, mod)
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
	for _, m := range r.root {
		m.Register(&r.Engine.RouterGroup)
	}
}
