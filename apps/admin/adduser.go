package main

import (
	"context"
	"fmt"

	"github.com/trezcool/shiksha/core/user"
)

// addUser creates an active user.User
func (cli *commandLine) addUser(nu user.NewUser) error {
	usr, err := cli.usrSvc.Create(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Printf("user %s created: %s\n", usr.ID, usr.Role)
	return nil
}
