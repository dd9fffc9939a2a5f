package entity

// Session はログイン時にローカルへ保存されるトークンとユーザー情報
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

type User struct {
	ID         int64  `json:"id"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role,omitempty"`
	Department int64  `json:"department,omitempty"`
}
