package users

import (
	apiusers "github.com/opst/taskboard/pkg/api/types/users"
	kdb "github.com/opst/taskboard/pkg/db"
)

// Compose a user for responses. Password hashes never reach here.
func Compose(u kdb.User) apiusers.User {
	teamName := apiusers.TeamNameNone
	if u.TeamName != nil {
		teamName = *u.TeamName
	}
	return apiusers.User{
		Id:       u.Id,
		Name:     u.Name,
		Email:    u.Email,
		Image:    u.Image,
		Role:     string(u.Role),
		TeamId:   u.TeamId,
		TeamName: teamName,
	}
}
