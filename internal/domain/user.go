package domain

type User struct {
	ID        string
	FirstName string
	LastName  string
	UserName  string
	Email     string
	Role      string
}

type RegisterInput struct {
	FirstName string
	LastName  string
	UserName  string
	Email     string
	Password  string
	Role      string
}
