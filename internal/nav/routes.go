package nav

// Route describes one page of the dashboard
type Route struct {
	Layout        string `json:"layout"`
	Path          string `json:"path"`
	Name          string `json:"name"`
	Icon          string `json:"icon"`
	HideInSidebar bool   `json:"hide_in_sidebar,omitempty"`
}

// Href is the full path of the route
func (r Route) Href() string {
	return r.Layout + r.Path
}

// Layouts shown in the sidebar. Routes under any other layout, such as /empty, are
// reachable but never listed.
const (
	LayoutAdmin  = "/admin"
	LayoutAgent  = "/agent"
	LayoutSchool = "/school"
	LayoutEmpty  = "/empty"
)

// DefaultRoutes is the dashboard's route table
var DefaultRoutes = []Route{
	{Layout: LayoutAdmin, Path: "/dashboard", Name: "Dashboard", Icon: "dashboard"},
	{Layout: LayoutAdmin, Path: "/agents", Name: "Agents", Icon: "groups"},
	{Layout: LayoutAdmin, Path: "/revenue", Name: "Revenue", Icon: "payments"},
	{Layout: LayoutAgent, Path: "/scan", Name: "Scan QR Code", Icon: "qr_code_scanner"},
	{Layout: LayoutSchool, Path: "/payments", Name: "Payments", Icon: "receipt_long"},
	{Layout: LayoutAdmin, Path: "/agents/new", Name: "New Agent", Icon: "person_add", HideInSidebar: true},
	{Layout: LayoutEmpty, Path: "/agents/:agentId/add-customer", Name: "Add Customer", Icon: "person_add", HideInSidebar: true},
}
