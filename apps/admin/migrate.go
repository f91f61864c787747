package main

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (cli *commandLine) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := cli.migrator.Up(); err != nil {
					return err
				}
				return cli.printVersion()
			},
		},
		&cobra.Command{
			Use:   "down [N]",
			Short: "Revert the last N migrations, all of them when N is omitted",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var n int
				if len(args) > 0 {
					var err error
					if n, err = strconv.Atoi(args[0]); err != nil || n < 1 {
						return errors.Errorf("N must be a positive number (got %q)", args[0])
					}
				}
				if err := cli.migrator.Down(n); err != nil {
					return err
				}
				return cli.printVersion()
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return cli.printVersion()
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Set the schema version without migrating, to recover from a failed migration",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return errors.Errorf("version must be a number (got %q)", args[0])
				}
				if err = cli.migrator.Force(v); err != nil {
					return err
				}
				return cli.printVersion()
			},
		},
	)
	return cmd
}

func (cli *commandLine) printVersion() error {
	v, dirty, err := cli.migrator.Version()
	if err != nil {
		return err
	}
	if dirty {
		cli.printf("version: %d (dirty)\n", v)
	} else {
		cli.printf("version: %d\n", v)
	}
	return nil
}
