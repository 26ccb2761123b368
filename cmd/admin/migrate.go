package main

import (
	"github.com/s/eduportal/internal/database"
)

var gooseRunFunc = database.RunGoose // mockable

func (cli *commandLine) migrate(args []string) error {
	return gooseRunFunc(cli.ctx, args[0], cli.db, args[1:]...)
}
