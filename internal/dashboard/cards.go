package dashboard

// Card is a styled statistic container on the dashboard
type Card struct {
	Title  string
	Value  string
	Footer string
	Icon   string
	Class  string
}
