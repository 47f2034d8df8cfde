package domain

// Session is the client's view of who is signed in.
// IsAuthenticated is only ever true while User is set.
type Session struct {
	User            *User `json:"user,omitempty"`
	IsAuthenticated bool  `json:"isAuthenticated"`
}

// Anonymous is the empty session every process starts with.
func Anonymous() Session {
	return Session{}
}
