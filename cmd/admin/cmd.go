package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"syscall"

	"golang.org/x/term"

	"github.com/s/eduportal/internal/progress"
	"github.com/s/eduportal/internal/storage"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	ctx     context.Context
	db      *sql.DB
	store   storage.Store
	tracker *progress.Tracker
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  resetpassword -username USERNAME|EMAIL        - reset user's password")
	fmt.Println("  adduser -username NAME -fullname NAME [-admin] - create a user")
	fmt.Println("  migrate COMMAND [ARGS]                         - run goose (up, down, status, ...)")
	fmt.Println("  reconcile -course ID                           - backfill missing lesson progress")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserUname := addUserCmd.String("username", "", "Login of the new user.")
	addUserEmail := addUserCmd.String("email", "", "Email, defaults to the username.")
	addUserFullName := addUserCmd.String("fullname", "", "Full name shown in the portal.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant access to the admin area.")

	reconcileCmd := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	reconcileCourse := reconcileCmd.String("course", "", "ID of the course to reconcile.")

	switch args[1] {
	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserUname == "" || *addUserFullName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, *addUserEmail, *addUserFullName, pwd, *addUserAdmin)

	case "migrate":
		if len(args) < 3 {
			fmt.Println("Usage: migrate up|up-by-one|up-to VERSION|down|down-to VERSION|redo|reset|status|version")
			return errHelp
		}
		return cli.migrate(args[2:])

	case "reconcile":
		if err := reconcileCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		id, err := strconv.ParseUint(*reconcileCourse, 10, 0)
		if err != nil || id == 0 {
			reconcileCmd.Usage()
			return errHelp
		}
		return cli.reconcile(uint(id))

	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
