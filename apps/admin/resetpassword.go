package main

import (
	"github.com/trezcool/darasa/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	usr, err := cli.usrSvc.GetByUsernameOrEmail(uname)
	if err != nil {
		return err
	}
	uu := user.UpdateUser{
		Username:        usr.Username,
		Email:           usr.Email,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := uu.Validate(usr, cli.usrSvc); err != nil {
		return err
	}
	if _, err := cli.usrSvc.Update(usr.ID, uu); err != nil {
		return err
	}
	logger.Printf("password reset for %q", usr.Username)
	return nil
}
