package domain

type Customer struct {
	ID       string
	Name     string
	Email    string
	Phone    string
	OrderIDs []string
}
