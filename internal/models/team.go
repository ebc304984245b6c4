package models

// TeamMember is a security analyst that tickets can be assigned to.
type TeamMember struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
