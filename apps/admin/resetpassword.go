package main

import (
	"context"

	"github.com/trezcool/shiksha/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		return err
	}
	_, err = cli.usrSvc.SetPassword(ctx, usr, user.ResetPassword{Password: pwd, PasswordConfirm: pwd})
	return err
}

func (cli *commandLine) deactivate(uname string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		return err
	}
	_, err = cli.usrSvc.Deactivate(ctx, usr)
	return err
}
