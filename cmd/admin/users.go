package main

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/s/eduportal/internal/models"
	"github.com/s/eduportal/internal/storage"
)

func (cli *commandLine) resetPassword(login, pwd string) error {
	usr, err := cli.store.UserByLogin(cli.ctx, strings.TrimSpace(login))
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	return cli.store.UpdatePassword(cli.ctx, usr.ID, usr.Password)
}

// addUser creates a user; an existing login only gets its password replaced.
func (cli *commandLine) addUser(uname, email, fullName, pwd string, isAdmin bool) error {
	uname = strings.ToLower(strings.TrimSpace(uname))
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = uname
	}

	usr, err := cli.store.UserByLogin(cli.ctx, uname)
	switch {
	case err == nil:
		if err := usr.SetPassword(pwd); err != nil {
			return err
		}
		return cli.store.UpdatePassword(cli.ctx, usr.ID, usr.Password)
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}

	usr = models.User{
		Username: uname,
		Email:    email,
		FullName: strings.TrimSpace(fullName),
		IsAdmin:  isAdmin,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	return errors.Wrap(cli.store.CreateUser(cli.ctx, &usr), "creating user")
}
