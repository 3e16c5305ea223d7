package users

// TeamNameNone is shown as the team name of users without team.
const TeamNameNone = "Sem Equipe"

// TeamIdNone in Assignment.TeamId removes the user from the team.
const TeamIdNone = "NONE"

type User struct {
	Id       string  `json:"id"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Image    *string `json:"image,omitempty"`
	Role     string  `json:"role"`
	TeamId   *string `json:"teamId"`
	TeamName string  `json:"teamName"`
}

type Register struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Profile struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// request body of PUT /api/admin/users/:userId
type Assignment struct {
	Role   *string `json:"role,omitempty"`
	TeamId *string `json:"teamId,omitempty"`
}

// response of login, register and logout.
type Session struct {
	Success bool  `json:"success"`
	User    *User `json:"user,omitempty"`
}
