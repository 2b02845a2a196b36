package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/pkg/errors"

	"github.com/elimuhq/elimu/core"
	"github.com/elimuhq/elimu/core/identity"
)

// resetPassword sets a new password on the admin account behind the given
// email address.
func resetPassword(args []string, deps commandDeps) error {
	fs := flag.NewFlagSet("resetpassword", flag.ContinueOnError)
	email := fs.String("email", "", "email address of the admin (required)")
	if err := fs.Parse(args); err != nil {
		return errHelp
	}

	ctx := context.Background()
	adm, err := deps.adminRepo.GetAdminByEmail(ctx, core.CleanString(*email, true))
	if err != nil {
		if errors.Cause(err) == identity.ErrNotFound {
			return errors.Errorf("no admin with email %q", *email)
		}
		return errors.Wrap(err, "looking up admin")
	}

	pwd, err := promptPassword("New password: ")
	if err != nil {
		return err
	}
	ap := identity.AdminPassword{Password: pwd}
	if err = ap.Validate(deps.validate); err != nil {
		return err
	}

	if _, err = deps.identitySvc.ResetAdminPassword(ctx, adm.ID, pwd); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	fmt.Printf("password reset for %s\n", adm.Email)
	return nil
}
