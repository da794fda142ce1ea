// Package router lays out the storefront API on a gin engine.
package router

import (
	"net/http"
	"path"

	"github.com/gin-gonic/gin"
)

// APIBase is the versioned prefix every storefront group is mounted under.
const APIBase = "/api/v1"

// RouteInfo describes one mounted route.
type RouteInfo struct {
	Group  string
	Method string
	Path   string
}

// Mount registers groups under APIBase and returns every route it added, in
// registration order.
func Mount(engine *gin.Engine, groups ...*DomainGroup) []RouteInfo {
	api := engine.Group(APIBase)
	var routes []RouteInfo
	for _, g := range groups {
		g.mount(api)
		routes = append(routes, g.Routes(APIBase)...)
	}
	return routes
}

// DomainGroup collects the routes of one storefront area, such as the cart,
// together with the guards in front of them. Nothing touches gin until Mount.
type DomainGroup struct {
	name     string
	prefix   string
	guards   []gin.HandlerFunc
	routes   []route
	children []*DomainGroup
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use puts guards in front of this group and everything below it.
func (dg *DomainGroup) Use(guards ...gin.HandlerFunc) *DomainGroup {
	dg.guards = append(dg.guards, guards...)
	return dg
}

func (dg *DomainGroup) Handle(method, rel string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, route{method: method, path: rel, handlers: handlers})
	return dg
}

func (dg *DomainGroup) GET(rel string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, rel, h...)
}

func (dg *DomainGroup) POST(rel string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, rel, h...)
}

func (dg *DomainGroup) PUT(rel string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, rel, h...)
}

func (dg *DomainGroup) PATCH(rel string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPatch, rel, h...)
}

func (dg *DomainGroup) DELETE(rel string, h ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, rel, h...)
}

// Group adds a child group under prefix and returns it.
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	child := NewDomainGroup(name, prefix)
	dg.children = append(dg.children, child)
	return child
}

func (dg *DomainGroup) mount(parent *gin.RouterGroup) {
	rg := parent.Group(dg.prefix, dg.guards...)
	for _, r := range dg.routes {
		rg.Handle(r.method, r.path, r.handlers...)
	}
	for _, child := range dg.children {
		child.mount(rg)
	}
}

// Routes lists the routes of the group and its children, resolved against base.
func (dg *DomainGroup) Routes(base string) []RouteInfo {
	prefix := base
	if dg.prefix != "" {
		prefix = path.Join(base, dg.prefix)
	}
	infos := make([]RouteInfo, 0, len(dg.routes))
	for _, r := range dg.routes {
		p := prefix
		if r.path != "" {
			p = path.Join(prefix, r.path)
		}
		infos = append(infos, RouteInfo{Group: dg.name, Method: r.method, Path: p})
	}
	for _, child := range dg.children {
		infos = append(infos, child.Routes(prefix)...)
	}
	return infos
}
