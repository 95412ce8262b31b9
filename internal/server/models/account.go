package models

// Account is a privileged (admin or manager) principal row. These accounts
// are provisioned out of band; the service only authenticates them.
type Account struct {
	ID     string
	Phone  string
	Name   string
	Active bool
}
