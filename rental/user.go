package rental

// User is a registered borrower. Users are never mutated or deleted.
type User struct {
	id    int64
	name  string
	email string
}

// BuildUser creates a validated User.
func BuildUser(id int64, name string, email string) (User, error) {
	if err := validateID(id); err != nil {
		return User{}, err
	}

	registration, err := BuildUserRegistration(name, email)
	if err != nil {
		return User{}, err
	}

	return User{
		id:    id,
		name:  registration.name,
		email: registration.email,
	}, nil
}

// ID returns the store-assigned identifier.
func (u User) ID() int64 {
	return u.id
}

// Name returns the display name.
func (u User) Name() string {
	return u.name
}

// Email returns the email address, which is unique across users.
func (u User) Email() string {
	return u.email
}

// Users is a list of User.
type Users []User

// UserRegistration holds the validated input for a user that has not been assigned an id yet.
type UserRegistration struct {
	name  string
	email string
}

// BuildUserRegistration validates the fields of a new user.
func BuildUserRegistration(name string, email string) (UserRegistration, error) {
	if err := validateName(name); err != nil {
		return UserRegistration{}, err
	}

	if err := validateEmail(email); err != nil {
		return UserRegistration{}, err
	}

	return UserRegistration{name: name, email: email}, nil
}

func (r UserRegistration) Name() string {
	return r.name
}

func (r UserRegistration) Email() string {
	return r.email
}
