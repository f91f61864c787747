package echoapi

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolrecords/core/grade"
	"github.com/trezcool/schoolrecords/core/professor"
	"github.com/trezcool/schoolrecords/core/query"
	"github.com/trezcool/schoolrecords/core/student"
	"github.com/trezcool/schoolrecords/services/metrics"
	"github.com/trezcool/schoolrecords/services/report"
)

const (
	xlsxContentType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	gradesExportName   = "grades.xlsx"
	headerTotalCount   = "X-Total-Count"
	headerExportCapped = "X-Export-Truncated"
)

type (
	gradeDeps struct {
		svc      grade.Service
		stdSvc   student.Service
		profSvc  professor.Service
		validate *validator.Validate
	}

	gradeApi struct {
		gradeDeps
		pager  pager
		export pager
		limit  int
	}
)

func registerGradeAPI(g *echo.Group, jwt echo.MiddlewareFunc, pgr pager, exportLimit int, deps gradeDeps) {
	api := gradeApi{
		gradeDeps: deps,
		pager:     pgr,
		export:    pgr.unpaged(exportLimit),
		limit:     exportLimit,
	}

	gg := g.Group("/grades", jwt)
	gg.GET("", api.query)
	gg.POST("", api.create, staffMiddleware())
	gg.GET("/export", api.exportXLSX, staffMiddleware())

	// detail endpoints
	dg := gg.Group("/:id", api.ctxGradeMiddleware())
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, api.gradeOwnerMiddleware())
	dg.DELETE("", api.destroy, api.gradeOwnerMiddleware())
}

// Handlers

func (api *gradeApi) create(ctx echo.Context) error {
	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}

	// teachers only record grades as themselves
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	rctx := ctx.Request().Context()
	if !claims.IsAdmin {
		prof, err := api.profSvc.GetByUserID(rctx, claims.UserID())
		if err != nil {
			if errors.Cause(err) == professor.ErrNotFound {
				return errHttpForbidden
			}
			return errors.Wrap(err, "finding professor by user ID")
		}
		if data.ProfessorID == 0 {
			data.ProfessorID = prof.ID
		}
		if data.ProfessorID != prof.ID {
			return errHttpForbidden
		}
	}

	if err = data.Validate(rctx, api.validate, api.svc); err != nil {
		return err
	}

	gr, err := api.svc.Record(rctx, data)
	if err != nil {
		return errors.Wrap(err, "recording grade")
	}
	return ctx.JSON(http.StatusCreated, gr)
}

func (api *gradeApi) query(ctx echo.Context) error {
	spec, err := api.pager.bindSpec(ctx, "grade", grade.Fields)
	if err != nil {
		return err
	}
	if err = api.scope(ctx, &spec); err != nil {
		return err
	}

	grades, total, err := api.svc.Query(ctx.Request().Context(), spec)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, query.PageOf(grades, total, spec))
}

// exportXLSX writes the filtered grades as a spreadsheet, up to the export limit.
func (api *gradeApi) exportXLSX(ctx echo.Context) error {
	spec, err := api.export.bindSpec(ctx, "grade", grade.Fields)
	if err != nil {
		return err
	}
	spec.Page, spec.PageSize = 1, api.limit

	rctx := ctx.Request().Context()
	grades, total, err := api.svc.Query(rctx, spec)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}

	names := make(report.StudentNames)
	for _, gr := range grades {
		if _, ok := names[gr.StudentID]; ok {
			continue
		}
		s, err := api.stdSvc.GetByID(rctx, gr.StudentID)
		if err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				names[gr.StudentID] = ""
				continue
			}
			return errors.Wrap(err, "finding student by ID")
		}
		names[gr.StudentID] = s.FullName()
	}

	var buf bytes.Buffer
	if err = report.WriteGrades(&buf, grades, names); err != nil {
		return errors.Wrap(err, "writing grades workbook")
	}
	metrics.ExportedRows.Add(float64(len(grades)))

	header := ctx.Response().Header()
	header.Set(echo.HeaderContentDisposition, `attachment; filename="`+gradesExportName+`"`)
	header.Set(headerTotalCount, strconv.Itoa(total))
	if total > len(grades) {
		header.Set(headerExportCapped, "true")
	}
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (api *gradeApi) retrieve(ctx echo.Context) error {
	gr, err := getContextObject[grade.Grade](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, gr)
}

func (api *gradeApi) update(ctx echo.Context) error {
	gr, err := getContextObject[grade.Grade](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}

	var data grade.UpdateGrade
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGrade")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	gr, err = api.svc.Update(ctx.Request().Context(), gr, data)
	if err != nil {
		return errors.Wrap(err, "updating grade")
	}
	return ctx.JSON(http.StatusOK, gr)
}

func (api *gradeApi) destroy(ctx echo.Context) error {
	gr, err := getContextObject[grade.Grade](ctx)
	if err != nil {
		return errors.Wrap(err, "retrieving object from context")
	}
	if err = api.svc.Delete(ctx.Request().Context(), gr.ID); err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// scope restricts spec to the grades the context user may see: all of them for staff,
// their own for students.
func (api *gradeApi) scope(ctx echo.Context, spec *query.Spec) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin || claims.IsTeacher {
		return nil
	}
	if !claims.IsStudent {
		return errHttpForbidden
	}

	s, err := api.stdSvc.GetByUserID(ctx.Request().Context(), claims.UserID())
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpForbidden
		}
		return errors.Wrap(err, "finding student by user ID")
	}
	spec.Restrict(query.Eq(grade.Fields.MustLookup("student_id"), float64(s.ID)))
	return nil
}

// ctxGradeMiddleware loads the `:id` grade, visible to staff and to the graded student.
func (api *gradeApi) ctxGradeMiddleware() echo.MiddlewareFunc {
	return objectMiddleware(func(ctx echo.Context, id int) (grade.Grade, error) {
		claims, err := getContextClaims(ctx)
		if err != nil {
			return grade.Grade{}, errors.Wrap(err, "getting context claims")
		}
		rctx := ctx.Request().Context()
		gr, err := api.svc.GetByID(rctx, id)
		if err != nil {
			return grade.Grade{}, err
		}
		if claims.IsAdmin || claims.IsTeacher {
			return gr, nil
		}

		s, err := api.stdSvc.GetByUserID(rctx, claims.UserID())
		if err != nil {
			if errors.Cause(err) == student.ErrNotFound {
				return grade.Grade{}, grade.ErrNotFound
			}
			return grade.Grade{}, errors.Wrap(err, "finding student by user ID")
		}
		if s.ID != gr.StudentID {
			return grade.Grade{}, grade.ErrNotFound
		}
		return gr, nil
	}, grade.ErrNotFound)
}

// gradeOwnerMiddleware lets admins and the professor who recorded the context grade through.
func (api *gradeApi) gradeOwnerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			if !claims.IsTeacher {
				return errHttpForbidden
			}

			gr, err := getContextObject[grade.Grade](ctx)
			if err != nil {
				return errors.Wrap(err, "retrieving object from context")
			}
			prof, err := api.profSvc.GetByUserID(ctx.Request().Context(), claims.UserID())
			if err != nil {
				if errors.Cause(err) == professor.ErrNotFound {
					return errHttpForbidden
				}
				return errors.Wrap(err, "finding professor by user ID")
			}
			if prof.ID != gr.ProfessorID {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
