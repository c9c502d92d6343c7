package main

import (
	"context"
	"fmt"

	"github.com/nbaobe/portal/core/user"
)

func (cli *commandLine) addUser(nu user.NewUser) error {
	if err := nu.Validate(cli.validate, cli.usrSvc); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Create(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Printf("user %q created (id: %s)\n", usr.Username, usr.ID)
	return nil
}
