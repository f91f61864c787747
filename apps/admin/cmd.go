package main

import (
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/trezcool/schoolrecords/core/query"
	"github.com/trezcool/schoolrecords/core/student"
	"github.com/trezcool/schoolrecords/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errEmptyPassword = errors.New("password cannot be empty")
)

// migrator is implemented by database.Migrator.
type migrator interface {
	Up() error
	Down(n int) error
	Version() (uint, bool, error)
	Force(version int) error
}

type commandLine struct {
	usrRepo  user.Repository
	stdSvc   student.Service
	migrator migrator
	builder  query.Builder
	out      io.Writer
}

func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	root.SetArgs(args)
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	return root.Execute()
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "School records administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		cli.addUserCmd(),
		cli.resetPasswordCmd(),
		cli.migrateCmd(),
		cli.studentsCmd(),
	)
	return root
}

func (cli *commandLine) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, args...)
}

// readPassword prompts for a password without echoing it.
func (cli *commandLine) readPassword() (string, error) {
	cli.printf("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	cli.printf("\n")
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	if strings.TrimSpace(string(pwd)) == "" {
		return "", errEmptyPassword
	}
	return string(pwd), nil
}
