package entity

// Contact is either a registered patient or a guest who booked without an account.
type Contact interface {
	// Email returns the address notifications go to; empty when unknown.
	Email() string
	// DisplayName is the name used in notification greetings.
	DisplayName() string
	isContact()
}

type RegisteredContact struct {
	User User
}

func (c RegisteredContact) Email() string { return c.User.Email }

func (c RegisteredContact) DisplayName() string {
	return nameOrDefault(c.User.FullName)
}

func (RegisteredContact) isContact() {}

type GuestContact struct {
	Name         string
	Phone        string
	EmailAddress string
}

func (c GuestContact) Email() string { return c.EmailAddress }

func (c GuestContact) DisplayName() string {
	return nameOrDefault(c.Name)
}

func (GuestContact) isContact() {}

func nameOrDefault(name string) string {
	if name == "" {
		return DefaultPatientName
	}
	return name
}
