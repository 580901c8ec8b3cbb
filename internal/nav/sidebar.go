package nav

import "strings"

// Link is one rendered sidebar entry
type Link struct {
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Href   string `json:"href"`
	Active bool   `json:"active"`
}

var sidebarLayouts = map[string]bool{
	LayoutAdmin:  true,
	LayoutAgent:  true,
	LayoutSchool: true,
}

// Sidebar maps routes to links in order, skipping hidden routes and unknown layouts.
//
// A link is active when currentPath contains the route path anywhere, so a path such
// as /admin/agents also activates every route whose path is a substring of it. A route
// with an empty path is active everywhere.
func Sidebar(routes []Route, currentPath string) []Link {
	links := make([]Link, 0, len(routes))
	for _, r := range routes {
		if r.HideInSidebar || !sidebarLayouts[r.Layout] {
			continue
		}
		links = append(links, Link{
			Name:   r.Name,
			Icon:   r.Icon,
			Href:   r.Href(),
			Active: strings.Contains(currentPath, r.Path),
		})
	}
	return links
}
