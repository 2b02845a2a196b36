package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/elimuhq/elimu/core/identity"
)

// addAdmin provisions an admin account from the command line. The password is
// prompted for twice and never accepted as a flag.
func addAdmin(args []string, deps commandDeps) error {
	fs := flag.NewFlagSet("addadmin", flag.ContinueOnError)
	name := fs.String("name", "", "full name of the admin (required)")
	email := fs.String("email", "", "email address of the admin (required)")
	role := fs.String("role", identity.RoleAdmin, "role tag stored on the record")
	if err := fs.Parse(args); err != nil {
		return errHelp
	}

	pwd, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if pwd != confirm {
		return errors.New("passwords do not match")
	}

	na := identity.NewAdmin{
		FullName: *name,
		Email:    *email,
		Password: pwd,
		Role:     *role,
	}
	if err = na.Validate(deps.validate, deps.identitySvc); err != nil {
		return err
	}

	adm, err := deps.identitySvc.CreateAdmin(context.Background(), na)
	if err != nil {
		return errors.Wrap(err, "creating admin")
	}
	fmt.Printf("admin %s (%s) created\n", adm.FullName, adm.Email)
	return nil
}
