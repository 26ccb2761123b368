package main

import (
	"fmt"
)

func (cli *commandLine) reconcile(courseID uint) error {
	n, err := cli.tracker.ReconcileCourse(cli.ctx, courseID)
	if err != nil {
		return err
	}
	fmt.Printf("course %d: %d progress rows added\n", courseID, n)
	return nil
}
