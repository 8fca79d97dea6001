package directory

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StaffID   string    `json:"staffId"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	ManagerID string    `json:"managerId,omitempty"`
	Division  string    `json:"division,omitempty"`
	Region    string    `json:"region,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TreeNode is one entry of the organizational tree rooted at users without a
// manager.
type TreeNode struct {
	User    User       `json:"user"`
	Reports []TreeNode `json:"reports,omitempty"`
}
