package main

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/trezcool/schoolrecords/core/query"
	"github.com/trezcool/schoolrecords/core/student"
)

func (cli *commandLine) studentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "students",
		Aliases: []string{"student"},
		Short:   "Browse students",
	}

	var p query.Params
	list := &cobra.Command{
		Use:   "list",
		Short: "List students as a table",
		Long: `List students as a table.

Examples:
  admin students list --filter "year_level>=10;last_name:ez"
  admin students list --sort last_name --desc --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := cli.builder.Build(p, student.Fields)
			if err != nil {
				return err
			}
			students, total, err := cli.stdSvc.Query(cmd.Context(), spec)
			if err != nil {
				return errors.Wrap(err, "querying students")
			}
			return cli.printStudents(query.PageOf(students, total, spec))
		},
	}
	list.Flags().StringVarP(&p.Filter, "filter", "f", "", `Filter expression, eg. "year_level>5;last_name:ez"`)
	list.Flags().StringVarP(&p.SortField, "sort", "s", "", "Sort field")
	list.Flags().BoolVar(&p.SortDesc, "desc", false, "Sort in descending order")
	list.Flags().IntVarP(&p.Page, "page", "p", 1, "Page number")
	list.Flags().IntVarP(&p.PageSize, "page-size", "n", query.DefaultPageSize, "Page size")

	cmd.AddCommand(list)
	return cmd
}

func (cli *commandLine) printStudents(page query.PagedResult[student.Student]) error {
	table := tablewriter.NewWriter(cli.out)
	table.Header("ID", "First name", "Last name", "Email", "Year", "Enrolled", "Active")
	for _, s := range page.Items {
		row := []string{
			strconv.Itoa(s.ID),
			s.FirstName,
			s.LastName,
			s.Email,
			strconv.Itoa(s.YearLevel),
			s.EnrollmentDate.Format("2006-01-02"),
			strconv.FormatBool(s.IsActive),
		}
		if err := table.Append(row); err != nil {
			return errors.Wrap(err, "writing row")
		}
	}
	if err := table.Render(); err != nil {
		return errors.Wrap(err, "rendering table")
	}
	cli.printf("page %d/%d, %d student(s)\n", page.Page, page.TotalPages, page.TotalCount)
	return nil
}
