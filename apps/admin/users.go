package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/schoolrecords/core"
	"github.com/trezcool/schoolrecords/core/user"
)

func (cli *commandLine) addUserCmd() *cobra.Command {
	var (
		name, uname, email string
		roles              []string
	)
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user, or reactivate and update an existing one",
		Long: `Create a user, or reactivate and update an existing one.
The password is prompted next.

Examples:
  admin adduser --username jdoe --email jdoe@school.cd --role admin:
  admin adduser --username teacher1 --role teacher:`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, role := range roles {
				if user.RolePriority(role) == 0 {
					return errors.Errorf("unknown role %q", role)
				}
			}
			pwd, err := cli.readPassword()
			if err != nil {
				return err
			}
			usr, err := cli.addUser(cmd.Context(), name, uname, email, pwd, roles)
			if err != nil {
				return err
			}
			cli.printf("user %q (id %d) saved\n", usr.Username, usr.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVarP(&uname, "username", "u", "", "Username")
	cmd.Flags().StringVarP(&email, "email", "e", "", "Email")
	cmd.Flags().StringSliceVarP(&roles, "role", "r", nil, "Role, repeatable")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

// addUser updates or creates a user.User
func (cli *commandLine) addUser(ctx context.Context, name, uname, email, pwd string, roles []string) (user.User, error) {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)
	name = core.CleanString(name)

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, uname)
	switch errors.Cause(err) {
	case nil:
		if err = cli.usrRepo.CheckUniqueness(ctx, uname, email, usr); err != nil {
			return user.User{}, err
		}
	case user.ErrNotFound:
		if err = cli.usrRepo.CheckUniqueness(ctx, uname, email); err != nil {
			return user.User{}, err
		}
		usr = user.User{Username: uname, CreatedAt: time.Now().UTC(), Roles: []string{}}
	default:
		return user.User{}, errors.Wrap(err, "finding user")
	}

	if name != "" {
		usr.Name = name
	} else if usr.Name == "" {
		usr.Name = uname
	}
	if email != "" {
		usr.Email = email
	}
	if len(roles) > 0 {
		usr.Roles = roles
	}
	usr.IsActive = true
	usr.UpdatedAt = time.Now().UTC()
	if err = usr.SetPassword(pwd); err != nil {
		return user.User{}, errors.Wrap(err, "hashing password")
	}

	if usr.ID == 0 {
		return cli.usrRepo.CreateUser(ctx, usr)
	}
	return cli.usrRepo.UpdateUser(ctx, usr)
}

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	var uname string
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pwd, err := cli.readPassword()
			if err != nil {
				return err
			}
			return cli.resetPassword(cmd.Context(), uname, pwd)
		},
	}
	cmd.Flags().StringVarP(&uname, "username", "u", "", "The user's username or email. The password will be prompted next.")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func (cli *commandLine) resetPassword(ctx context.Context, uname, pwd string) error {
	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(ctx, core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
