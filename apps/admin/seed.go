package main

import (
	"context"
	"fmt"

	"github.com/nbaobe/portal/storage/fixtures"
)

func (cli *commandLine) seed(path string) error {
	f, err := fixtures.LoadFile(path)
	if err != nil {
		return err
	}
	res, err := fixtures.Seed(context.Background(), f, cli.validate, cli.refSvc, cli.usrSvc)
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d colleges, %d programs, %d users\n", res.Colleges, res.Programs, res.Users)
	return nil
}
