package entity

// User represents an upstream helpdesk user.
type User struct {
	ID            int64  `json:"Id"`
	Name          string `json:"Name"`
	Email         string `json:"Email"`
	MobilePhone   string `json:"MobilePhone"`
	Mobile        string `json:"Mobile"`
	Phone         string `json:"Phone"`
	WorkPhone     string `json:"WorkPhone"`
	InternalPhone string `json:"InternalPhone"`
}

// PhoneFields returns every phone-bearing field in matching priority
// order. Upstream deployments populate different subsets.
func (u *User) PhoneFields() []string {
	return []string{u.MobilePhone, u.Mobile, u.Phone, u.WorkPhone, u.InternalPhone}
}
