package user

import "fmt"

// User is a pick'em participant. Authentication lives outside this service;
// only identity and display data are kept here.
type User struct {
	ID       string
	Username string
}

func (u User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user id is required")
	}
	if u.Username == "" {
		return fmt.Errorf("username is required")
	}

	return nil
}
